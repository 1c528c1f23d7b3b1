package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Render writes one diagnostic to out in the CLI's standard shape:
//
//	ERROR RP4001: package ID mismatch: 0x02
//	  note: expected 0x7f from --package-id
func Render(out io.Writer, d *Diagnostic) {
	c := infoColor
	switch d.Severity {
	case SevError:
		c = errorColor
	case SevWarning:
		c = warningColor
	}
	fmt.Fprintf(out, "%s %s\n", c.Sprint(d.Severity.String()), d.Error())
	for _, n := range d.Notes {
		fmt.Fprintf(out, "  note: %s\n", n.Msg)
	}
}

// RenderBag writes every diagnostic in the bag in deterministic order.
func RenderBag(out io.Writer, bag *Bag) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		d := d
		Render(out, &d)
	}
}
