package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/tracegraph/internal/ctxlog"
)

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 4 << 20

// File reads JSON Lines: one event object per line. Blank lines are skipped.
// A Path of "-" reads standard input.
type File struct {
	Path  string
	Stdin io.Reader
}

// Describe implements Source.
func (f *File) Describe() string {
	if f.Path == "-" {
		return "file stdin"
	}
	return "file " + f.Path
}

// Stream implements Source.
func (f *File) Stream(ctx context.Context, out chan<- []byte) error {
	logger := ctxlog.FromContext(ctx).With("source", "file", "path", f.Path)

	var r io.Reader
	if f.Path == "-" {
		r = f.Stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(f.Path)
		if err != nil {
			return fmt.Errorf("failed to open event file: %w", err)
		}
		defer file.Close()
		r = file
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		payload := bytes.TrimSpace(scanner.Bytes())
		if len(payload) == 0 {
			continue
		}
		// The scanner reuses its buffer.
		payload = bytes.Clone(payload)

		select {
		case out <- payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read event file at line %d: %w", line+1, err)
	}

	logger.Debug("Event file exhausted.", "lines", line)
	return nil
}
