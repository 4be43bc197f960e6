package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"byebye/internal/batch"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

func outcomeColor(outcome batch.Outcome) string {
	switch outcome {
	case batch.OutcomeFound:
		return ansiGreen
	case batch.OutcomeMultiple:
		return ansiYellow
	case batch.OutcomeError:
		return ansiRed
	case batch.OutcomeSearching:
		return ansiBlue
	case batch.OutcomeNotFound, batch.OutcomePending:
		return ansiDim
	default:
		return ""
	}
}

func renderOutcome(outcome batch.Outcome, colorize bool) string {
	label := string(outcome)
	if colorize {
		if color := outcomeColor(outcome); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
