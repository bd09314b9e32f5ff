// Package cmdtest builds command fixtures backed by the memory store.
package cmdtest

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store/memory"
	"github.com/Paintersrp/jottr/internal/story"
)

// Now is the fixed reference time of states built by NewState.
var Now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// NewState returns a state over a memory store seeded with records.
func NewState(t *testing.T, records ...story.Story) (*state.State, *memory.Store) {
	t.Helper()

	cfg := config.Default(t.TempDir())
	cfg.Store.Driver = config.DriverMemory
	st := memory.New(records...)

	s := state.New(cfg, state.WithStore(st), state.WithClock(func() time.Time { return Now }))
	t.Cleanup(func() { _ = s.Close() })
	return s, st
}

// Execute runs cmd with args and returns what it wrote to stdout.
func Execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return ExecuteWithInput(t, cmd, "", args...)
}

// ExecuteWithInput is Execute with stdin set to input.
func ExecuteWithInput(t *testing.T, cmd *cobra.Command, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString(input))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
