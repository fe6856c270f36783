// Package console prints the coloured status lines the CLI shows its user.
//
// Writes that fail because the reader went away (EPIPE, closed file) are
// remembered: the printer switches itself to io.Discard and Err reports
// ErrOutputClosed so long-running work can stop.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
)

// ErrOutputClosed is reported once the output stream has been closed by
// its reader.
var ErrOutputClosed = errors.New("output closed")

// Printer writes Info (yellow), Success (green) and Error (red) lines.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
	err    error
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{out: w, styles: newStyles(r)}
}

// Infof prints a yellow informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.styles.info, format, args...)
}

// Successf prints a green success line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.styles.success, format, args...)
}

// Errorf prints a red error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.styles.err, format, args...)
}

// Field prints "label: value" with a bold label.
func (p *Printer) Field(label, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write([]byte(p.styles.label.Render(label+":") + " " + value + "\n"))
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write([]byte(style.Render(msg) + "\n"))
}

// Write passes b through unstyled, for streaming remote command output. It
// never fails: once the output is closed the bytes are dropped and Err
// reports it.
func (p *Printer) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write(b)
	return len(b), nil
}

// write must be called with p.mu held.
func (p *Printer) write(b []byte) {
	if _, err := p.out.Write(b); err != nil && isClosed(err) {
		p.err = ErrOutputClosed
		p.out = io.Discard
	}
}

// Err returns ErrOutputClosed once a write has hit a closed output.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Discard drops all further output.
func (p *Printer) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = io.Discard
}

func isClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
