/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/pkg/cmd/root"
)

func main() {
	os.Exit(run())
}

func run() int {
	s, err := state.NewState()
	if err != nil {
		var initErr *config.ConfigInitError
		if errors.As(err, &initErr) {
			fmt.Fprintf(os.Stderr, "%v\nEdit %s or set the matching JOTTR_ environment variable.\n",
				err, config.GetConfigPath(homeDir()))
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close")
		}
	}()

	cmd, err := root.NewCmdRoot(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func homeDir() string {
	home, err := state.GetHomeDir()
	if err != nil {
		return "~"
	}
	return home
}
