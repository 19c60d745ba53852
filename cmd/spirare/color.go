package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

func shouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(value, color string, enabled bool) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	return color + value + ansiReset
}

// sourceLabel marks whether a phrase came from the theme or the base pool.
func sourceLabel(isSpecific, colorize bool) string {
	if isSpecific {
		return paint("theme", ansiGreen, colorize)
	}
	return paint("base", ansiDim, colorize)
}

func activeLabel(active, colorize bool) string {
	if active {
		return paint("active", ansiGreen, colorize)
	}
	return paint("inactive", ansiYellow, colorize)
}
