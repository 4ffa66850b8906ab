package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"selectbox/src/clipboard"
	"selectbox/src/config"
	"selectbox/src/geometry"
	"selectbox/src/gui"
	"selectbox/src/logutil"
	"selectbox/src/screenshot"
)

type mainOptions struct {
	disabled   bool
	noClamp    bool
	perDrag    bool
	verbose    bool
	configPath string
}

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
		args = []string{"selectbox"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "selectbox",
		Short:         "Drag a rectangle on a surface and report its geometry",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.disabled, "disabled", false, "Start with selection disabled")
	cmd.Flags().BoolVar(&opts.noClamp, "no-clamp", false, "Do not clamp the selection to the surface")
	cmd.Flags().BoolVar(&opts.perDrag, "per-drag", false, "Create a fresh overlay for every drag")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file")

	return cmd
}

func loadOptions(opts mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		ConfigPathOverride: opts.configPath,
		StartDisabled:      opts.disabled,
	}
	if opts.noClamp {
		clamp := false
		lo.ClampOverride = &clamp
	}
	if opts.perDrag {
		lo.OverlayPolicyOverride = config.OverlayPerDrag
	}
	return lo
}

func runApp(opts mainOptions) error {
	// Before any window is created.
	enableDPIAwareness()

	cfg, err := config.LoadWithOptions(loadOptions(opts))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logutil.Setup(logutil.Options{FileLogging: cfg.EnableFileLogging, Path: cfg.LogFile, Verbose: opts.verbose})
	logDisplays()

	a := app.NewWithID("io.github.selectbox")
	w := a.NewWindow("selectbox")

	view := gui.NewView(cfg)
	defer view.Close()

	var last *geometry.Result
	view.Controller.OnSelectionComplete(func(r geometry.Result) {
		last = &r
		if cfg.CopyToClipboard {
			go copyResult(r)
		}
	})

	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("Selection",
			fyne.NewMenuItem("Enable", func() { view.SetEnabled(true) }),
			fyne.NewMenuItem("Disable", func() { view.SetEnabled(false) }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Copy last result", func() {
				if last != nil {
					go copyResult(*last)
				}
			}),
		),
	))
	w.SetContent(view.Content())
	w.Resize(fyne.NewSize(800, 600))

	log.Printf("selectbox started (clamp=%v overlay=%s attach=%s enabled=%v)",
		cfg.Clamp, cfg.OverlayPolicy, cfg.AttachPolicy, cfg.StartEnabled)
	w.ShowAndRun()
	return nil
}

func copyResult(r geometry.Result) {
	if err := clipboard.WriteResult(r); err != nil {
		log.Printf("Failed to copy selection: %v", err)
	}
}

func logDisplays() {
	b, err := screenshot.VirtualBounds()
	if err != nil {
		log.Printf("MONITOR: %v", err)
		return
	}
	log.Printf("MONITOR: Virtual screen - x:%g y:%g w:%g h:%g", b.Left, b.Top, b.Width, b.Height)
}

// normalizeLegacyArgs maps single-dash long flags (-no-clamp) to their
// double-dash form so older shortcuts keep working.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"disabled", "no-clamp", "per-drag", "verbose", "config"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
