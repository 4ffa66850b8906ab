package config

import (
	"os"
	"path/filepath"
	"testing"

	"selectbox/src/selection"
)

func TestLoad(t *testing.T) {
	t.Setenv("CLAMP", "false")
	t.Setenv("OVERLAY_POLICY", "per-drag")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("MIN_SELECTION", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Clamp {
		t.Errorf("Expected Clamp to be false, got %v", cfg.Clamp)
	}
	if cfg.OverlayPolicy != OverlayPerDrag {
		t.Errorf("Expected OverlayPolicy to be '%s', got '%s'", OverlayPerDrag, cfg.OverlayPolicy)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.MinSelection != 12 {
		t.Errorf("Expected MinSelection to be 12, got %d", cfg.MinSelection)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Clamp {
		t.Error("Expected clamping to be on by default")
	}
	if cfg.OverlayPolicy != OverlayReuse {
		t.Errorf("Expected default overlay policy '%s', got '%s'", OverlayReuse, cfg.OverlayPolicy)
	}
	if cfg.AttachPolicy != AttachWhileEnabled {
		t.Errorf("Expected default attach policy '%s', got '%s'", AttachWhileEnabled, cfg.AttachPolicy)
	}
	if !cfg.StartEnabled {
		t.Error("Expected controller to start enabled by default")
	}
}

func TestLoadFromTOMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectbox.toml")
	content := `
clamp = false
attach_policy = "always"
output_dir = "/tmp/shots"

[overlay]
color = "#00ff00"
stroke_width = 4
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnvVar, path)
	t.Setenv("OVERLAY_COLOR", "#0000ff")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Clamp {
		t.Error("Expected clamp=false from TOML file")
	}
	if cfg.AttachPolicy != AttachAlways {
		t.Errorf("Expected attach policy 'always', got '%s'", cfg.AttachPolicy)
	}
	if cfg.OutputDir != "/tmp/shots" {
		t.Errorf("Expected output dir from file, got '%s'", cfg.OutputDir)
	}
	if cfg.Style.StrokeWidth != 4 {
		t.Errorf("Expected stroke width 4, got %v", cfg.Style.StrokeWidth)
	}
	if cfg.Style.Color != "#0000ff" {
		t.Errorf("Expected env to override overlay color, got '%s'", cfg.Style.Color)
	}
}

func TestLoadOptionsWin(t *testing.T) {
	t.Setenv("CLAMP", "false")
	clamp := true

	cfg, err := LoadWithOptions(LoadOptions{
		ClampOverride:         &clamp,
		OverlayPolicyOverride: "recreate",
		StartDisabled:         true,
	})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Clamp {
		t.Error("Expected ClampOverride to win over env")
	}
	if cfg.OverlayPolicy != OverlayPerDrag {
		t.Errorf("Expected 'recreate' to resolve to '%s', got '%s'", OverlayPerDrag, cfg.OverlayPolicy)
	}
	if cfg.StartEnabled {
		t.Error("Expected StartDisabled to win")
	}
}

func TestLoadRejectsBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("clamp = ["), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWithOptions(LoadOptions{ConfigPathOverride: path}); err == nil {
		t.Error("Expected error for malformed TOML")
	}
}

func TestSelectionOptions(t *testing.T) {
	cfg := &Config{Clamp: false, OverlayPolicy: OverlayPerDrag, AttachPolicy: AttachAlways}
	opts := cfg.SelectionOptions()
	if opts.Clamp {
		t.Error("Expected Clamp to follow the config")
	}
	if opts.Overlay != selection.OverlayPerDrag {
		t.Errorf("Expected per-drag overlay, got %v", opts.Overlay)
	}
	if opts.Attach != selection.AttachAlways {
		t.Errorf("Expected attach-always, got %v", opts.Attach)
	}

	cfg = &Config{Clamp: true, OverlayPolicy: OverlayReuse, AttachPolicy: AttachWhileEnabled}
	if got := cfg.SelectionOptions(); got != selection.DefaultOptions() {
		t.Errorf("Expected default options, got %+v", got)
	}
}
