package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"selectbox/src/selection"
)

const (
	EnvFileEnvVar    = "SELECTBOX_ENV"
	ConfigFileEnvVar = "SELECTBOX_CONFIG"

	OverlayReuse   = "reuse"
	OverlayPerDrag = "per-drag"

	AttachWhileEnabled = "while-enabled"
	AttachAlways       = "always"

	DefaultHotkey       = "Ctrl+Alt+S"
	DefaultOverlayColor = "#ff0000"
	DefaultStrokeWidth  = 2
	DefaultMinSelection = 5
)

type LoadOptions struct {
	ConfigPathOverride    string
	ClampOverride         *bool
	OverlayPolicyOverride string
	StartDisabled         bool
}

// Style is the visual overlay style. It never affects geometry.
type Style struct {
	Color       string  `toml:"color"`
	FillAlpha   uint8   `toml:"fill_alpha"`
	StrokeWidth float32 `toml:"stroke_width"`
}

type Config struct {
	Clamp             bool
	OverlayPolicy     string
	AttachPolicy      string
	StartEnabled      bool
	Hotkey            string
	EnableFileLogging bool
	LogFile           string
	OutputDir         string
	CopyToClipboard   bool
	MinSelection      int
	Style             Style
	ConfigPath        string
}

// fileConfig mirrors the optional TOML file. Pointer fields distinguish
// "unset" from a zero value.
type fileConfig struct {
	Clamp           *bool  `toml:"clamp"`
	OverlayPolicy   string `toml:"overlay_policy"`
	AttachPolicy    string `toml:"attach_policy"`
	Hotkey          string `toml:"hotkey"`
	OutputDir       string `toml:"output_dir"`
	CopyToClipboard *bool  `toml:"copy_to_clipboard"`
	MinSelection    int    `toml:"min_selection"`
	Style           Style  `toml:"overlay"`
}

// SelectionOptions maps the resolved policies onto controller options.
func (c *Config) SelectionOptions() selection.Options {
	opts := selection.DefaultOptions()
	opts.Clamp = c.Clamp
	if c.OverlayPolicy == OverlayPerDrag {
		opts.Overlay = selection.OverlayPerDrag
	}
	if c.AttachPolicy == AttachAlways {
		opts.Attach = selection.AttachAlways
	}
	return opts
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions resolves configuration in increasing priority:
// defaults, TOML file, .env / process environment, LoadOptions.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Clamp:           true,
		OverlayPolicy:   OverlayReuse,
		AttachPolicy:    AttachWhileEnabled,
		StartEnabled:    true,
		Hotkey:          DefaultHotkey,
		OutputDir:       ".",
		CopyToClipboard: true,
		MinSelection:    DefaultMinSelection,
		Style: Style{
			Color:       DefaultOverlayColor,
			FillAlpha:   51,
			StrokeWidth: DefaultStrokeWidth,
		},
	}

	cfg.ConfigPath = firstNonEmpty(opts.ConfigPathOverride, os.Getenv(ConfigFileEnvVar))
	if cfg.ConfigPath != "" {
		if err := applyFile(cfg, cfg.ConfigPath); err != nil {
			return nil, err
		}
	}

	if v, ok := lookupBool("CLAMP"); ok {
		cfg.Clamp = v
	}
	if v := os.Getenv("OVERLAY_POLICY"); v != "" {
		cfg.OverlayPolicy = v
	}
	if v := os.Getenv("ATTACH_POLICY"); v != "" {
		cfg.AttachPolicy = v
	}
	if v, ok := lookupBool("START_ENABLED"); ok {
		cfg.StartEnabled = v
	}
	cfg.Hotkey = getEnvWithDefault("HOTKEY", cfg.Hotkey)
	cfg.EnableFileLogging = strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true"
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.OutputDir = getEnvWithDefault("OUTPUT_DIR", cfg.OutputDir)
	if v, ok := lookupBool("COPY_TO_CLIPBOARD"); ok {
		cfg.CopyToClipboard = v
	}
	if v := os.Getenv("MIN_SELECTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MinSelection = n
		}
	}
	cfg.Style.Color = getEnvWithDefault("OVERLAY_COLOR", cfg.Style.Color)
	if v := os.Getenv("OVERLAY_STROKE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			cfg.Style.StrokeWidth = float32(f)
		}
	}

	if opts.ClampOverride != nil {
		cfg.Clamp = *opts.ClampOverride
	}
	if opts.OverlayPolicyOverride != "" {
		cfg.OverlayPolicy = opts.OverlayPolicyOverride
	}
	if opts.StartDisabled {
		cfg.StartEnabled = false
	}

	cfg.OverlayPolicy = resolveOverlayPolicy(cfg.OverlayPolicy)
	cfg.AttachPolicy = resolveAttachPolicy(cfg.AttachPolicy)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if fc.Clamp != nil {
		cfg.Clamp = *fc.Clamp
	}
	if fc.OverlayPolicy != "" {
		cfg.OverlayPolicy = fc.OverlayPolicy
	}
	if fc.AttachPolicy != "" {
		cfg.AttachPolicy = fc.AttachPolicy
	}
	if fc.Hotkey != "" {
		cfg.Hotkey = fc.Hotkey
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.CopyToClipboard != nil {
		cfg.CopyToClipboard = *fc.CopyToClipboard
	}
	if fc.MinSelection > 0 {
		cfg.MinSelection = fc.MinSelection
	}
	if fc.Style.Color != "" {
		cfg.Style.Color = fc.Style.Color
	}
	if fc.Style.FillAlpha > 0 {
		cfg.Style.FillAlpha = fc.Style.FillAlpha
	}
	if fc.Style.StrokeWidth > 0 {
		cfg.Style.StrokeWidth = fc.Style.StrokeWidth
	}
	return nil
}

// resolveEnvPath prefers a .env beside the executable, then the file named
// by SELECTBOX_ENV.
func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveOverlayPolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case OverlayPerDrag, "perdrag", "recreate":
		return OverlayPerDrag
	default:
		return OverlayReuse
	}
}

func resolveAttachPolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case AttachAlways:
		return AttachAlways
	default:
		return AttachWhileEnabled
	}
}

func lookupBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return b, true
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
