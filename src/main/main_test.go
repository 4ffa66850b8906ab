package main

import (
	"testing"

	"selectbox/src/config"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"selectbox", "-no-clamp", "-config", "/tmp/s.toml"},
			out:  []string{"selectbox", "--no-clamp", "--config", "/tmp/s.toml"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"selectbox", "-disabled=true", "-config=/tmp/s.toml"},
			out:  []string{"selectbox", "--disabled=true", "--config=/tmp/s.toml"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"selectbox", "--per-drag", "-v", "--other"},
			out:  []string{"selectbox", "--per-drag", "-v", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--disabled", "--no-clamp", "--per-drag", "--config", "/tmp/s.toml"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.disabled || !opts.noClamp || !opts.perDrag {
		t.Fatalf("Expected all boolean flags set, got %+v", opts)
	}
	if opts.configPath != "/tmp/s.toml" {
		t.Fatalf("Expected configPath=/tmp/s.toml, got %q", opts.configPath)
	}
}

func TestLoadOptions(t *testing.T) {
	lo := loadOptions(mainOptions{noClamp: true, perDrag: true, disabled: true, configPath: "x.toml"})
	if lo.ClampOverride == nil || *lo.ClampOverride {
		t.Fatal("Expected clamp override false")
	}
	if lo.OverlayPolicyOverride != config.OverlayPerDrag {
		t.Fatalf("Expected per-drag override, got %q", lo.OverlayPolicyOverride)
	}
	if !lo.StartDisabled || lo.ConfigPathOverride != "x.toml" {
		t.Fatalf("Unexpected load options %+v", lo)
	}

	lo = loadOptions(mainOptions{})
	if lo.ClampOverride != nil || lo.OverlayPolicyOverride != "" || lo.StartDisabled {
		t.Fatalf("Expected no overrides, got %+v", lo)
	}
}
