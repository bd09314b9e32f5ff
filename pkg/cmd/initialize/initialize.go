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
package initialize

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/state"
)

type prompter interface {
	Select(prompt string, choices []string) (string, error)
	Input(prompt, initial string, validate func(string) error) (string, error)
}

type promptkitPrompter struct{}

func (promptkitPrompter) Select(prompt string, choices []string) (string, error) {
	sel := selection.New(prompt, choices)
	sel.Filter = nil
	return sel.RunPrompt()
}

func (promptkitPrompter) Input(prompt, initial string, validate func(string) error) (string, error) {
	in := textinput.New(prompt)
	in.InitialValue = initial
	if validate != nil {
		in.Validate = validate
	}
	return in.RunPrompt()
}

// newPrompter is replaced in tests.
var newPrompter = func() prompter { return promptkitPrompter{} }

func NewCmdInit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "initialize",
		Aliases: []string{"i", "init"},
		Short:   "Set up jottr's configuration.",
		Long: heredoc.Doc(`
			Walks you through choosing a store, an editor and the tab the browser
			opens on, then writes the configuration file.
		`),
		Example: "jottr init",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter()
			cfg, err := config.Update(s.Config.Home(), func(file *config.Config) error {
				answers, err := prompt(p, *file)
				if err != nil {
					return err
				}
				if answers.Store.Driver == config.DriverVault {
					if err := os.MkdirAll(answers.Store.VaultDir, os.ModePerm); err != nil {
						return fmt.Errorf("create vault: %w", err)
					}
				}
				*file = answers
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialization complete! Config written to %s\n", cfg.GetConfigPath())
			return nil
		},
	}

	return cmd
}

func prompt(p prompter, cfg config.Config) (config.Config, error) {
	driver, err := p.Select("Where should stories be stored?", current(config.Drivers(), cfg.Store.Driver))
	if err != nil {
		return cfg, err
	}
	cfg.Store.Driver = driver

	switch driver {
	case config.DriverVault:
		dir, err := p.Input("Vault directory:", cfg.Store.VaultDir, notEmpty)
		if err != nil {
			return cfg, err
		}
		cfg.Store.VaultDir = strings.TrimSpace(dir)
	case config.DriverPostgres:
		url, err := p.Input("Database URL:", cfg.Store.DatabaseURL, notEmpty)
		if err != nil {
			return cfg, err
		}
		cfg.Store.DatabaseURL = strings.TrimSpace(url)
	}

	editor, err := p.Select("Please select an editor option.", current(config.EditorNames(), cfg.Editor))
	if err != nil {
		return cfg, err
	}
	cfg.Editor = editor

	categories := make([]string, len(query.Categories))
	for i, c := range query.Categories {
		categories[i] = c.String()
	}
	category, err := p.Select("Which tab should the browser open on?", current(categories, cfg.DefaultCategory))
	if err != nil {
		return cfg, err
	}
	cfg.DefaultCategory = category

	return cfg, nil
}

// current moves value to the front of choices so it is preselected.
func current(choices []string, value string) []string {
	i := slices.Index(choices, value)
	if i <= 0 {
		return choices
	}
	return append([]string{value}, slices.Delete(choices, i, i+1)...)
}

func notEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}
