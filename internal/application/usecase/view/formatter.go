package view

import (
	"fmt"
	"strings"

	"nvcompare/internal/domain/model"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

func colorize(s, c string) string { return c + s + ansiReset }

type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) paint(s, c string) string {
	if !f.Color {
		return s
	}
	return colorize(s, c)
}

// Render produces a one-line summary of a view snapshot.
func (f *Formatter) Render(snap model.ViewSnapshot) string {
	var sb strings.Builder
	sb.WriteString(f.paint("[NVCAP] ", ansiDim))

	switch snap.Status {
	case model.StatusLoading:
		sb.WriteString(f.paint("loading…", ansiYellow))

	case model.StatusError:
		parts := make([]string, 0, len(snap.Errors))
		for _, e := range snap.Errors {
			parts = append(parts, e.Message)
		}
		sb.WriteString(f.paint("error: "+strings.Join(parts, "; "), ansiRed))

	case model.StatusReady:
		cmp := snap.Comparison
		col := ansiYellow
		switch {
		case cmp.DifferenceTrillions > 0:
			col = ansiGreen
		case cmp.DifferenceTrillions < 0:
			col = ansiRed
		}
		sb.WriteString(fmt.Sprintf("NVDA $%.2fT", cmp.NvidiaCapTrillions))
		sb.WriteString(f.paint("  ||  ", ansiDim))
		sb.WriteString(fmt.Sprintf("CRYPTO $%.2fT", cmp.CryptoCapTrillions))
		sb.WriteString(" ")
		sb.WriteString(f.paint(fmt.Sprintf("Δ=%+.2fT (%+.2f%%)", cmp.DifferenceTrillions, cmp.DifferencePercent), col))
	}
	return sb.String()
}
