// Package browser opens URLs in the system browser.
package browser

import (
	"fmt"
	"io"

	"github.com/pkg/browser"

	"github.com/ewilliams-labs/notetune/internal/core/ports"
)

// Opener implements ports.BrowserOpener with github.com/pkg/browser.
type Opener struct {
	open func(url string) error
}

var _ ports.BrowserOpener = (*Opener)(nil)

// NewOpener returns an Opener that silences the launched browser's output.
func NewOpener() *Opener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Opener{open: browser.OpenURL}
}

// Open launches the default browser on url.
func (o *Opener) Open(url string) error {
	if err := o.open(url); err != nil {
		return fmt.Errorf("browser: failed to open %s: %w", url, err)
	}
	return nil
}

// Printer implements ports.BrowserOpener by writing the URL for the user to
// open by hand, for headless machines.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Open prints url.
func (p *Printer) Open(url string) error {
	_, err := fmt.Fprintf(p.w, "Open this URL to authorize notetune:\n\n  %s\n\n", url)
	return err
}
