package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"selectbox/src/clipboard"
	"selectbox/src/config"
	"selectbox/src/eventloop"
	"selectbox/src/geometry"
	"selectbox/src/hotkey"
	"selectbox/src/logutil"
	"selectbox/src/overlay"
	"selectbox/src/pointer"
	"selectbox/src/screenshot"
	"selectbox/src/selection"
	"selectbox/src/session"
	"selectbox/src/singleinstance"
	"selectbox/src/tray"
	"selectbox/src/worker"
)

const selectionTimeout = 60 * time.Second

var (
	errDisabled = errors.New("selection disabled")
	errBusy     = errors.New("selection already in progress")
)

type trayOptions struct {
	verbose    bool
	configPath string
	selectOnce bool
	stdout     bool
}

// screenSurface is the virtual screen; it does not change while running.
type screenSurface geometry.Bounds

func (s screenSurface) Bounds() geometry.Bounds { return geometry.Bounds(s) }

// resident holds the state shared by the tray, hotkey, server and loop
// goroutines.
type resident struct {
	cfg      *config.Config
	bounds   geometry.Bounds
	loop     *eventloop.Loop
	selector overlay.Selector
	pool     *worker.Pool

	enabled   atomic.Bool
	selecting atomic.Bool
}

func main() {
	opts := &trayOptions{}
	if err := newRootCmd(opts).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *trayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "selectbox-tray",
		Short:         "Resident tray tool: select a screen region with a hotkey and save it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigPathOverride: opts.configPath})
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logutil.Setup(logutil.Options{FileLogging: cfg.EnableFileLogging, Path: cfg.LogFile, Verbose: opts.verbose})
			if opts.selectOnce {
				return runSelectOnce(cfg, opts.stdout, cmd.OutOrStdout())
			}
			return runResident(cfg)
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	cmd.Flags().BoolVar(&opts.selectOnce, "select-once", false, "Select one region (delegating to a running resident) and exit")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "With --select-once, print the result JSON instead of copying it")
	return cmd
}

func runResident(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := singleinstance.NewServer()
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Close()

	bounds, err := screenshot.VirtualBounds()
	if err != nil {
		return fmt.Errorf("failed to query displays: %w", err)
	}
	log.Printf("MONITOR: Virtual screen - x:%g y:%g w:%g h:%g", bounds.Left, bounds.Top, bounds.Width, bounds.Height)
	initClipboard(cfg)

	r := newResident(cfg, bounds)
	defer r.pool.Close()
	listener := r.newListener()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			tray.Quit()
		case <-ctx.Done():
		}
	}()

	tray.Run(tray.Config{
		Title:        "selectbox",
		Tooltip:      fmt.Sprintf("selectbox - Press %s to select a region", cfg.Hotkey),
		StartEnabled: cfg.StartEnabled,
		OnToggle:     r.setEnabled,
		OnSelect:     r.trigger,
		OnReady: func() {
			listener.Start()
			go r.runLoop(ctx)
			go r.serve(ctx, srv)
			log.Printf("selectbox tray ready, hotkey %s", cfg.Hotkey)
		},
		OnExit: func() {
			listener.Stop()
			cancel()
		},
	})
	return nil
}

// selectClient is the delegation half of singleinstance.Client.
type selectClient interface {
	TrySelect(ctx context.Context, outputToStdout bool) (bool, string, error)
}

func runSelectOnce(cfg *config.Config, stdout bool, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), selectionTimeout+5*time.Second)
	defer cancel()
	return handleSelectOnce(ctx, singleinstance.NewClient(), stdout, w, func() error {
		return runStandalone(cfg, stdout, w)
	})
}

// handleSelectOnce delegates to a resident when one answers and otherwise
// runs the selection in this process.
func handleSelectOnce(ctx context.Context, client selectClient, stdout bool, w io.Writer, fallback func() error) error {
	delegated, text, err := client.TrySelect(ctx, stdout)
	if !delegated {
		log.Printf("No resident detected (not delegated), running standalone")
		return fallback()
	}
	if err != nil {
		return err
	}
	log.Printf("Delegated to resident")
	if stdout {
		_, err = fmt.Fprintln(w, text)
	}
	return err
}

func runStandalone(cfg *config.Config, stdout bool, w io.Writer) error {
	bounds, err := screenshot.VirtualBounds()
	if err != nil {
		return fmt.Errorf("failed to query displays: %w", err)
	}
	if !stdout {
		initClipboard(cfg)
	}

	cfg.StartEnabled = true
	r := newResident(cfg, bounds)
	defer r.pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), selectionTimeout)
	defer cancel()
	go r.runLoop(ctx)

	listener := r.newListener()
	listener.Start()
	defer listener.Stop()

	var target session.ResultTarget = session.StdoutTarget{Writer: w}
	if !stdout {
		target = session.ClipboardTarget{}
	}

	r.selecting.Store(true)
	defer r.selecting.Store(false)
	_, err = session.Execute(ctx, r.sessionOptions(session.MultiTarget{session.LogTarget{}, target}))
	return err
}

func newResident(cfg *config.Config, bounds geometry.Bounds) *resident {
	bus := pointer.NewBus()
	loop := eventloop.New(bus)
	ctrl := selection.New(bus, screenSurface(bounds), func() selection.Renderer {
		return &overlay.LogRenderer{Name: "screen"}
	}, cfg.SelectionOptions())

	r := &resident{
		cfg:      cfg,
		bounds:   bounds,
		loop:     loop,
		selector: overlay.NewSelector(loop, ctrl),
		pool:     worker.New(1),
	}
	r.enabled.Store(cfg.StartEnabled)
	loop.OnHotkey(r.trigger)
	return r
}

// newListener forwards global mouse input to the loop only while a
// selection is armed.
func (r *resident) newListener() *hotkey.Listener {
	l := hotkey.New(r.cfg.Hotkey, r.loop.Hotkey)
	l.ForwardPointer(r.bounds, func(ev pointer.Event) {
		if r.selecting.Load() {
			r.loop.Post(ev)
		}
	})
	return l
}

func (r *resident) runLoop(ctx context.Context) {
	if err := r.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Printf("event loop stopped: %v", err)
	}
}

func (r *resident) setEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

func (r *resident) trigger() {
	r.submit("local", r.localTarget(), nil)
}

func (r *resident) localTarget() session.ResultTarget {
	targets := session.MultiTarget{session.LogTarget{}}
	if r.cfg.CopyToClipboard {
		targets = append(targets, session.ClipboardTarget{})
	}
	return targets
}

// serve answers delegated requests until ctx ends.
func (r *resident) serve(ctx context.Context, srv singleinstance.Server) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		target := session.MultiTarget{
			session.LogTarget{},
			session.DelegatedTarget{Conn: conn, OutputToStdout: conn.Request().OutputToStdout},
		}
		r.submit("delegated", target, func() { _ = conn.Close() })
	}
}

// submit queues one selection session. Only one runs at a time; extra
// requests fail immediately. done runs once the target has been answered.
func (r *resident) submit(name string, target session.ResultTarget, done func()) bool {
	finish := func() {
		if done != nil {
			done()
		}
	}
	if !r.enabled.Load() {
		log.Printf("TRAY: selection disabled, ignoring %s request", name)
		_ = target.OnFailure(errDisabled)
		finish()
		return false
	}
	if !r.selecting.CompareAndSwap(false, true) {
		_ = target.OnFailure(errBusy)
		finish()
		return false
	}

	ok := r.pool.Submit(context.Background(), name, func(ctx context.Context) {
		defer finish()
		defer r.selecting.Store(false)

		ctx, cancel := context.WithTimeout(ctx, selectionTimeout)
		defer cancel()
		if res, err := session.Execute(ctx, r.sessionOptions(target)); err == nil {
			log.Printf("TRAY: selection %s saved to %s", res.Selection, res.Path)
		}
	})
	if !ok {
		r.selecting.Store(false)
		_ = target.OnFailure(errBusy)
		finish()
	}
	return ok
}

func (r *resident) sessionOptions(target session.ResultTarget) session.Options {
	return session.Options{
		SelectRegion: r.selector.Select,
		Surface:      r.bounds,
		Capture:      session.SaveTo(r.cfg.OutputDir),
		Target:       target,
		MinSelection: float64(r.cfg.MinSelection),
	}
}

func initClipboard(cfg *config.Config) {
	if !cfg.CopyToClipboard {
		return
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard disabled: %v", err)
		cfg.CopyToClipboard = false
	}
}
