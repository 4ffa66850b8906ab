package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"selectbox/src/config"
	"selectbox/src/eventloop"
	"selectbox/src/geometry"
	"selectbox/src/logutil"
	"selectbox/src/overlay"
	"selectbox/src/pointer"
	"selectbox/src/selection"
)

// The surface sits between a header row and a status row.
const (
	headerRows = 1
	statusRows = 1
)

type termOptions struct {
	noClamp    bool
	perDrag    bool
	configPath string
}

func main() {
	opts := &termOptions{}
	if err := newRootCmd(opts).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *termOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "selectbox-term",
		Short:         "Drag-select cells in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerm(*opts)
		},
	}
	cmd.Flags().BoolVar(&opts.noClamp, "no-clamp", false, "Do not clamp to the surface")
	cmd.Flags().BoolVar(&opts.perDrag, "per-drag", false, "Create a renderer per drag")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	return cmd
}

func runTerm(opts termOptions) error {
	lo := config.LoadOptions{ConfigPathOverride: opts.configPath}
	if opts.noClamp {
		clamp := false
		lo.ClampOverride = &clamp
	}
	if opts.perDrag {
		lo.OverlayPolicyOverride = config.OverlayPerDrag
	}
	cfg, err := config.LoadWithOptions(lo)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Never log to the terminal we draw on.
	logutil.Setup(logutil.Options{FileLogging: cfg.EnableFileLogging, Path: cfg.LogFile})

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := newTermApp(screen, cfg, cancel)
	defer app.ctrl.Close()
	app.draw()

	go app.poll()
	if err := app.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// termApp owns the screen surface. Everything except poll runs on the loop
// goroutine.
type termApp struct {
	screen  tcell.Screen
	loop    *eventloop.Loop
	ctrl    *selection.Controller
	mouse   mouseTracker
	status  string
	quit    func()
	results int
}

func newTermApp(screen tcell.Screen, cfg *config.Config, quit func()) *termApp {
	a := &termApp{
		screen: screen,
		loop:   eventloop.New(pointer.NewBus()),
		status: "drag with the left button; e toggles, q quits",
		quit:   quit,
	}
	style := cfg.Style
	a.ctrl = selection.New(a.loop.Bus(), a, func() selection.Renderer {
		return overlay.NewCellRenderer(screen, style, 0, headerRows)
	}, cfg.SelectionOptions())
	a.ctrl.OnSelectionComplete(a.onResult)
	if cfg.StartEnabled {
		a.ctrl.Enable()
	}
	return a
}

// Bounds is the drawable area in screen cells.
func (a *termApp) Bounds() geometry.Bounds {
	w, h := a.screen.Size()
	height := h - headerRows - statusRows - 1
	if height < 0 {
		height = 0
	}
	width := w - 1
	if width < 0 {
		width = 0
	}
	return geometry.Bounds{Top: headerRows, Width: float64(width), Height: float64(height)}
}

func (a *termApp) poll() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventMouse:
			x, y := e.Position()
			if pe, ok := a.mouse.track(x, y, e.Buttons(), a.Bounds()); ok {
				a.loop.Post(pe)
			}
		case *tcell.EventKey:
			a.loop.Do(func() { a.key(e) })
		case *tcell.EventResize:
			a.loop.Do(func() {
				a.screen.Sync()
				a.draw()
			})
		}
	}
}

func (a *termApp) key(e *tcell.EventKey) {
	switch {
	case e.Key() == tcell.KeyEscape, e.Key() == tcell.KeyCtrlC, e.Key() == tcell.KeyRune && e.Rune() == 'q':
		a.quit()
	case e.Key() == tcell.KeyRune && e.Rune() == 'e':
		if a.ctrl.Enabled() {
			a.ctrl.Disable()
			a.status = "selection disabled"
		} else {
			a.ctrl.Enable()
			a.status = "selection enabled"
		}
		a.draw()
	}
}

func (a *termApp) onResult(r geometry.Result) {
	a.results++
	a.status = fmt.Sprintf("#%d %s", a.results, r)
	log.Printf("TERM: selection complete: %s", r)
	a.draw()
}

func (a *termApp) draw() {
	w, h := a.screen.Size()
	header := fmt.Sprintf("selectbox  enabled=%v", a.ctrl.Enabled())
	putLine(a.screen, 0, w, header, tcell.StyleDefault.Reverse(true))
	putLine(a.screen, h-1, w, a.status, tcell.StyleDefault)
	a.screen.Show()
}

func putLine(s tcell.Screen, y, width int, text string, style tcell.Style) {
	x := 0
	for _, r := range text {
		if x >= width {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

// mouseTracker turns tcell button masks into press, move and release.
type mouseTracker struct {
	down bool
}

func (m *mouseTracker) track(x, y int, buttons tcell.ButtonMask, bounds geometry.Bounds) (pointer.Event, bool) {
	p := geometry.Point{X: float64(x), Y: float64(y)}
	primary := buttons&tcell.Button1 != 0
	switch {
	case primary && !m.down:
		m.down = true
		return pointer.Event{Kind: pointer.KindDown, Point: p, Bounds: bounds}, true
	case primary:
		return pointer.Event{Kind: pointer.KindMove, Point: p}, true
	case m.down:
		m.down = false
		return pointer.Event{Kind: pointer.KindUp, Point: p}, true
	default:
		return pointer.Event{}, false
	}
}
