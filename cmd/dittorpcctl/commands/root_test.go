package commands

import "testing"

func TestRootCmdRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"hash", "repeat", "sign", "kv", "init"} {
		if !names[want] {
			t.Errorf("expected rootCmd to register %q, got %v", want, names)
		}
	}
}

func TestRootCmdHasHostAndPortFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("host") == nil {
		t.Error("expected rootCmd to register a --host persistent flag")
	}
	if rootCmd.PersistentFlags().Lookup("port") == nil {
		t.Error("expected rootCmd to register a --port persistent flag")
	}
}

func TestKVCmdRegistersGetAndPut(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range kvCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["get"] || !names["put"] {
		t.Errorf("expected kvCmd to register get and put, got %v", names)
	}
}

func TestInitCmdRegistersInitializeAndCheck(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range initCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["initialize"] || !names["check-initialized"] {
		t.Errorf("expected initCmd to register initialize and check-initialized, got %v", names)
	}
}
