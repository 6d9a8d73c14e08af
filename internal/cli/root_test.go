package cli

import "testing"

func TestCommandsRegistered(t *testing.T) {
	want := []string{"run", "status", "install", "uninstall", "hooks", "emit", "guide"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestGuideEmbedded(t *testing.T) {
	if len(guideMD) == 0 {
		t.Fatal("guide.md not embedded")
	}
}
