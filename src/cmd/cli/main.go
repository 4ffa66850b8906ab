package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"selectbox/src/config"
	"selectbox/src/geometry"
	"selectbox/src/logutil"
	"selectbox/src/overlay"
	"selectbox/src/pointer"
	"selectbox/src/selection"
)

const (
	maxScriptSizeMB = 4
	maxScriptSize   = maxScriptSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath   string
	jsonOutput bool
	verbose    bool
	noClamp    bool
	perDrag    bool
	configPath string
}

// Script is a recorded gesture: the surface it ran on and the events in order.
type Script struct {
	Surface geometry.Bounds `json:"surface"`
	Steps   []Step          `json:"steps"`
}

// Step is one pointer event or lifecycle call. X and Y are raw viewport
// coordinates. A "resize" step replaces the surface bounds.
type Step struct {
	Type   string           `json:"type"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Bounds *geometry.Bounds `json:"bounds,omitempty"`
}

// scriptSurface lets a replay change the surface mid-drag.
type scriptSurface struct {
	bounds geometry.Bounds
}

func (s *scriptSurface) Bounds() geometry.Bounds { return s.bounds }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"selectbox-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "selectbox-cli",
		Short:         "Replay a gesture script through the selection controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to a JSON gesture script (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().BoolVar(&opts.noClamp, "no-clamp", false, "Do not clamp to the surface")
	cmd.Flags().BoolVar(&opts.perDrag, "per-drag", false, "Create a renderer per drag")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	logutil.Setup(logutil.Options{Verbose: opts.verbose})
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Starting gesture replay\n")
	}

	loadOptions := config.LoadOptions{ConfigPathOverride: opts.configPath}
	if opts.noClamp {
		clamp := false
		loadOptions.ClampOverride = &clamp
	}
	if opts.perDrag {
		loadOptions.OverlayPolicyOverride = config.OverlayPerDrag
	}
	cfg, err := config.LoadWithOptions(loadOptions)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: clamp=%v overlay=%s attach=%s\n", cfg.Clamp, cfg.OverlayPolicy, cfg.AttachPolicy)
	}

	script, err := readScript(opts.filePath, stdin)
	if err != nil {
		return err
	}

	results, err := replay(script, cfg.SelectionOptions(), cfg.StartEnabled)
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Replay produced %d selection(s)\n", len(results))
	}
	return outputResults(stdout, results, opts.jsonOutput)
}

func readScript(filePath string, stdin io.Reader) (Script, error) {
	var data []byte
	var err error

	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxScriptSize+1))
		if err != nil {
			return Script{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return Script{}, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return Script{}, fmt.Errorf("script is empty")
	}
	if len(data) > maxScriptSize {
		return Script{}, fmt.Errorf("script exceeds maximum size of %d MB", maxScriptSizeMB)
	}

	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("invalid gesture script: %w", err)
	}
	if script.Surface.Width < 0 || script.Surface.Height < 0 {
		return Script{}, fmt.Errorf("surface has negative size %gx%g", script.Surface.Width, script.Surface.Height)
	}
	return script, nil
}

// replay runs script through a controller fed by a pointer bus and returns
// every emitted result in order.
func replay(script Script, opts selection.Options, startEnabled bool) ([]geometry.Result, error) {
	bus := pointer.NewBus()
	surface := &scriptSurface{bounds: script.Surface}
	ctrl := selection.New(bus, surface, func() selection.Renderer {
		return &overlay.LogRenderer{Name: "cli"}
	}, opts)
	defer ctrl.Close()

	var results []geometry.Result
	sub := ctrl.OnSelectionComplete(func(r geometry.Result) {
		results = append(results, r)
	})
	defer sub.Cancel()

	if startEnabled {
		ctrl.Enable()
	}

	for i, step := range script.Steps {
		p := geometry.Point{X: step.X, Y: step.Y}
		switch strings.ToLower(step.Type) {
		case "down":
			bus.Down(p, surface.bounds)
		case "move":
			bus.Move(p)
		case "up":
			bus.Up(p)
		case "enable":
			ctrl.Enable()
		case "disable":
			ctrl.Disable()
		case "resize":
			if step.Bounds == nil {
				return nil, fmt.Errorf("step %d: resize needs bounds", i)
			}
			surface.bounds = *step.Bounds
		default:
			return nil, fmt.Errorf("step %d: unknown type %q", i, step.Type)
		}
	}

	if ctrl.Dragging() {
		log.Printf("CLI: script ended mid-drag, selection abandoned")
	}
	return results, nil
}

func outputResults(w io.Writer, results []geometry.Result, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []geometry.Result{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-file":
			normalized[i] = "--file"
		case strings.HasPrefix(arg, "-file="):
			normalized[i] = "--file=" + arg[len("-file="):]
		case arg == "-json":
			normalized[i] = "--json"
		case strings.HasPrefix(arg, "-json="):
			normalized[i] = "--json=" + arg[len("-json="):]
		case arg == "-verbose":
			normalized[i] = "--verbose"
		case strings.HasPrefix(arg, "-verbose="):
			normalized[i] = "--verbose=" + arg[len("-verbose="):]
		case arg == "-no-clamp":
			normalized[i] = "--no-clamp"
		case arg == "-per-drag":
			normalized[i] = "--per-drag"
		}
	}

	return normalized
}
