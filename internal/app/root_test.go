package app

import "testing"

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{
		"install", "remove", "update", "update-metadata",
		"search", "info", "list", "fix-symlinks", "history",
	}

	have := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		have[cmd.Name()] = true
	}

	for _, name := range want {
		if !have[name] {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestInstallFlags(t *testing.T) {
	for _, flag := range []string{"full-deps", "no-deps"} {
		if installCmd.Flags().Lookup(flag) == nil {
			t.Errorf("install flag --%s missing", flag)
		}
	}
}

func TestRemoveFlags(t *testing.T) {
	for _, flag := range []string{"force", "no-auto-remove"} {
		if removeCmd.Flags().Lookup(flag) == nil {
			t.Errorf("remove flag --%s missing", flag)
		}
	}
}

func TestSearchAllShorthand(t *testing.T) {
	f := searchCmd.Flags().Lookup("all")
	if f == nil {
		t.Fatal("search flag --all missing")
	}
	if f.Shorthand != "a" {
		t.Errorf("search --all shorthand = %q, want a", f.Shorthand)
	}
}

func TestPrefixFlagIsGlobal(t *testing.T) {
	if RootCmd.PersistentFlags().Lookup("prefix") == nil {
		t.Error("global --prefix flag missing")
	}
}
