// Package clip copies proposed actions to wherever the user can paste them.
package clip

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method names the backend that accepted the text.
type Method string

const (
	MethodNative Method = "native"
	MethodOSC52  Method = "osc52"
	MethodFile   Method = "file"
)

// Result reports where the text ended up.
type Result struct {
	Method   Method
	FilePath string // only set for MethodFile
}

// Backend is one clipboard mechanism.
type Backend struct {
	Method Method
	Write  func(text string) error
}

// osc52LimitBytes keeps payloads under what common terminals accept.
const osc52LimitBytes = 100_000

const tempPattern = "taskosaur-ai-action-*.json"

// Copier tries its backends in order and falls back to a temp file.
type Copier struct {
	backends []Backend
	tempDir  string
}

// NewCopier returns a Copier over the given backends. Files land in
// tempDir, or the OS temp dir when it is empty.
func NewCopier(tempDir string, backends ...Backend) *Copier {
	return &Copier{backends: backends, tempDir: tempDir}
}

// Native is the OS clipboard.
func Native() Backend {
	return Backend{Method: MethodNative, Write: atotto.WriteAll}
}

// OSC52 writes the terminal clipboard escape sequence to w. With
// requireTerminal set, w must be a terminal.
func OSC52(w io.Writer, requireTerminal bool) Backend {
	return Backend{Method: MethodOSC52, Write: func(text string) error {
		if text == "" {
			return errors.New("empty clipboard text")
		}
		if requireTerminal && !isTerminal(w) {
			return errors.New("output is not a terminal")
		}
		if len(text) > osc52LimitBytes {
			return fmt.Errorf("text too large for OSC52 (%d bytes > %d)", len(text), osc52LimitBytes)
		}

		seq := osc52.New(text).Limit(osc52LimitBytes)
		switch {
		case os.Getenv("TMUX") != "":
			seq = seq.Tmux()
		case os.Getenv("STY") != "":
			seq = seq.Screen()
		}
		_, err := seq.WriteTo(w)
		return err
	}}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Copy hands text to the first backend that accepts it.
func (c *Copier) Copy(text string) (Result, error) {
	for _, b := range c.backends {
		if b.Write == nil {
			continue
		}
		if err := b.Write(text); err == nil {
			return Result{Method: b.Method}, nil
		}
	}

	path, err := c.writeFile(text)
	if err != nil {
		return Result{}, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// CopyJSON copies the indented JSON encoding of v.
func (c *Copier) CopyJSON(v any) (Result, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encoding action: %w", err)
	}
	return c.Copy(string(data))
}

func (c *Copier) writeFile(text string) (path string, err error) {
	f, err := os.CreateTemp(c.tempDir, tempPattern)
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.WriteString(text); err != nil {
		_ = f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

// Stderr is used for OSC52 so the sequence does not interleave with the
// bubbletea renderer on stdout.
var defaultCopier = NewCopier("", Native(), OSC52(os.Stderr, true))

// WriteAll copies text with the native clipboard, then OSC52, then a
// temp file.
func WriteAll(text string) (Result, error) {
	return defaultCopier.Copy(text)
}
