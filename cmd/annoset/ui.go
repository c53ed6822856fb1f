package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/hupe1980/annoset/merge"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
)

// printWarning reports a skipped record.
func printWarning(w io.Writer, msg fmt.Stringer) {
	warningColor.Fprintf(w, "warning: %s\n", msg)
}

// printError reports a failed command.
func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "error: %v\n", err)
}

// reasonColor highlights conflicts that kept nothing in red.
func reasonColor(r merge.Reason) *color.Color {
	switch r {
	case merge.ReasonUnmatched, merge.ReasonBelowQuorum:
		return warningColor
	default:
		return errorColor
	}
}
