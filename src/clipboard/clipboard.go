package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"selectbox/src/geometry"
)

var (
	writeMu sync.Mutex
	initErr error
	inited  bool
)

var ErrUnavailable = errors.New("clipboard unavailable")

// Init prepares the system clipboard. It is safe to call more than once;
// the first outcome is remembered.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !inited {
		initErr = clipboard.Init()
		inited = true
	}
	return initErr
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	if err := Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteResult copies the selection geometry as JSON.
func WriteResult(r geometry.Result) error {
	text, err := Format(r)
	if err != nil {
		return err
	}
	return Write(text)
}

// Format renders r the way it is placed on the clipboard.
func Format(r geometry.Result) (string, error) {
	data, err := r.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode selection: %w", err)
	}
	return string(data), nil
}
