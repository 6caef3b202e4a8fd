// Package clip copies text to the clipboard.
package clip

import (
	"encoding/base64"
	"io"

	"github.com/atotto/clipboard"
)

const (
	// Copied is reported after a successful copy.
	Copied = "Copied."
	// CopyFailed is reported when neither the clipboard nor the fallback
	// accepted the text.
	CopyFailed = "Copy failed."
)

// Clipboard writes to the system clipboard and falls back once to an OSC 52
// escape sequence written to the terminal.
type Clipboard struct {
	write    func(string) error
	terminal io.Writer
}

// New returns a Clipboard whose fallback writes to terminal. A nil terminal
// disables the fallback.
func New(terminal io.Writer) *Clipboard {
	c := &Clipboard{terminal: terminal}
	if !clipboard.Unsupported {
		c.write = clipboard.WriteAll
	}
	return c
}

// Copy copies text and reports whether either path succeeded.
func (c *Clipboard) Copy(text string) bool {
	if c.write != nil && c.write(text) == nil {
		return true
	}
	if c.terminal == nil {
		return false
	}
	_, err := io.WriteString(c.terminal, OSC52(text))
	return err == nil
}

// Status returns the message shown after a copy attempt.
func Status(ok bool) string {
	if ok {
		return Copied
	}
	return CopyFailed
}

// OSC52 returns the escape sequence that asks the terminal to place text on
// the clipboard.
func OSC52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}
