package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	DefaultLogFile = "selectbox_debug.log"
	maxSizeBytes   = 10 * 1024 * 1024 // 10 MB
	maxArchives    = 3
)

// Options selects where the standard logger writes.
type Options struct {
	// FileLogging appends to Path with size-based rotation.
	FileLogging bool
	// Path defaults to DefaultLogFile in the working directory.
	Path string
	// Verbose mirrors log lines to stderr.
	Verbose bool
}

// Setup configures the standard logger. With neither file logging nor
// verbose output, logs are discarded so stdout stays clean.
func Setup(opts Options) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var writers []io.Writer
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}
	if opts.FileLogging {
		path := opts.Path
		if path == "" {
			path = DefaultLogFile
		}
		w, err := openRotating(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
}

type rotatingWriter struct {
	path string
	f    *os.File
}

func openRotating(path string) (*rotatingWriter, error) {
	rotateIfNeeded(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{path: path, f: f}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() > maxSizeBytes {
		rotate(path)
	}
}

// rotate shifts path -> path.1 -> path.2 -> path.3; the oldest is discarded.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string {
	return filepath.Clean(fmt.Sprintf("%s.%d", path, n))
}

// Sanitize makes free text safe for a single log line: control characters
// are escaped and the result is capped at maxLen runes.
func Sanitize(text string, maxLen int) string {
	runes := []rune(text)
	truncated := false
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
		truncated = true
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case r == '\n' || r == '\r':
			out = append(out, '\\', 'n')
		case r == '\t':
			out = append(out, '\\', 't')
		case r < 32 || r == 127:
			out = append(out, '?')
		default:
			out = append(out, r)
		}
	}
	if truncated {
		return string(out) + "..."
	}
	return string(out)
}
