package commands

import "testing"

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"start", "version"} {
		if !names[want] {
			t.Errorf("expected rootCmd to register %q, got %v", want, names)
		}
	}
}

func TestRootCmdHasConfigFlag(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("expected rootCmd to register a --config persistent flag")
	}
}

func TestGetRootCmdReturnsSameInstance(t *testing.T) {
	if GetRootCmd() != rootCmd {
		t.Error("expected GetRootCmd to return the package-level rootCmd")
	}
}
