package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorEnv overrides terminal detection: "always" forces ANSI colors,
// "never" disables them.
const ColorEnv = "BKP_COLOR"

// IsTTY returns true if the given writer is a terminal.
// It supports os.File and any wrapper that provides an Fd() method.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor returns true if the given writer should receive ANSI color codes.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	switch strings.ToLower(os.Getenv(ColorEnv)) {
	case "always":
		return true
	case "never":
		return false
	}

	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
