package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so commands can be executed
// repeatedly in one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// useSimulator routes openController to a fresh simulator for the test.
func useSimulator(t *testing.T) *gpio.Simulator {
	t.Helper()
	sim := gpio.NewSimulator(nil)
	prev := openController
	openController = func(backend, chip string) (gpio.Controller, error) {
		return sim, nil
	}
	t.Cleanup(func() { openController = prev })
	return sim
}

func executeCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("backend: sim\n"), 0644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args,
		"--config", configFile,
		"--log-file", filepath.Join(dir, "logs", "app.log"),
	))

	// cobra only hands the context to a subcommand that has none yet.
	for _, sub := range rootCmd.Commands() {
		sub.SetContext(ctx)
	}

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func writeTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remote.trace")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSetupAppliesConfigAndFlags(t *testing.T) {
	useSimulator(t)
	path := writeTrace(t, "")

	_, err := executeCommand(t, context.Background(), "inspect", path, "--chip", "gpiochip4")

	require.NoError(t, err)
	assert.Equal(t, "sim", cfg.Backend)
	assert.Equal(t, "gpiochip4", cfg.Chip)
}

func TestSetupMissingExplicitConfig(t *testing.T) {
	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"inspect", "x.trace", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"record", "replay", "monitor", "inspect"} {
		assert.True(t, names[want], want)
	}
}
