package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"selectbox/src/clipboard"
	"selectbox/src/geometry"
	"selectbox/src/screenshot"
	"selectbox/src/singleinstance"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrSelectionTooSmall  = errors.New("selection too small")
)

// SelectFunc runs one interactive selection. It returns (result, cancelled, error).
type SelectFunc func(ctx context.Context) (geometry.Result, bool, error)

// CaptureFunc stores the pixels under region and returns where they went.
type CaptureFunc func(ctx context.Context, region screenshot.Region) (string, error)

type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(err error) error
}

type Options struct {
	SelectRegion SelectFunc
	// Surface is the bounds the selection is made on, used to map the
	// surface-local result back to screen pixels.
	Surface geometry.Bounds
	// Capture is optional; without it only the geometry is delivered.
	Capture CaptureFunc
	Target  ResultTarget
	// MinSelection rejects results whose width or height is below it.
	MinSelection float64
}

type Result struct {
	Selection geometry.Result
	Region    screenshot.Region
	// Path is the capture location, empty when nothing was captured.
	Path string
}

func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}

	sel, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}
	if cancelled {
		_ = opts.Target.OnFailure(ErrSelectionCancelled)
		return Result{}, ErrSelectionCancelled
	}

	if sel.Width < opts.MinSelection || sel.Height < opts.MinSelection {
		err := fmt.Errorf("%w: %.0fx%.0f (minimum %.0f)", ErrSelectionTooSmall, sel.Width, sel.Height, opts.MinSelection)
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	res := Result{
		Selection: sel,
		Region:    screenshot.RegionFromResult(sel, opts.Surface),
	}
	log.Printf("SESSION: selection %s -> region %+v", sel, res.Region)

	if opts.Capture != nil {
		path, err := opts.Capture(ctx, res.Region)
		if err != nil {
			err = fmt.Errorf("capture failed: %w", err)
			_ = opts.Target.OnFailure(err)
			return Result{}, err
		}
		res.Path = path
	}

	if err := opts.Target.OnSuccess(res); err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}
	return res, nil
}

// SaveTo returns a CaptureFunc writing PNG files under dir.
func SaveTo(dir string) CaptureFunc {
	return func(ctx context.Context, region screenshot.Region) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return screenshot.SaveRegion(dir, region)
	}
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(res Result) error {
	return clipboard.WriteResult(res.Selection)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

// StdoutTarget prints the result JSON, followed by the capture path if any.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(res Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	data, err := res.Selection.JSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}
	if res.Path != "" {
		_, err = fmt.Fprintln(w, res.Path)
	}
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a selection requested by another process through
// the resident's single-instance server.
type DelegatedTarget struct {
	Conn           singleinstance.Conn
	OutputToStdout bool
}

func (t DelegatedTarget) OnSuccess(res Result) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	if t.OutputToStdout {
		data, err := res.Selection.JSON()
		if err != nil {
			return err
		}
		return t.Conn.RespondSuccess(string(data))
	}
	if err := clipboard.WriteResult(res.Selection); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return t.Conn.RespondSuccess("")
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}

// LogTarget records outcomes in the log only.
type LogTarget struct{}

func (LogTarget) OnSuccess(res Result) error {
	if res.Path != "" {
		log.Printf("SESSION: saved %s", res.Path)
	}
	return nil
}

func (LogTarget) OnFailure(err error) error {
	if errors.Is(err, ErrSelectionCancelled) {
		log.Printf("SESSION: selection cancelled")
		return nil
	}
	log.Printf("SESSION: failed: %v", err)
	return nil
}

// MultiTarget delivers to each target in order and stops at the first error.
type MultiTarget []ResultTarget

func (m MultiTarget) OnSuccess(res Result) error {
	for _, t := range m {
		if err := t.OnSuccess(res); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiTarget) OnFailure(err error) error {
	var first error
	for _, t := range m {
		if e := t.OnFailure(err); e != nil && first == nil {
			first = e
		}
	}
	return first
}
