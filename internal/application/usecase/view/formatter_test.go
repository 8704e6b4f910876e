package view

import (
	"strings"
	"testing"

	"nvcompare/internal/domain/model"
)

func TestFormatterRenderReady(t *testing.T) {
	f := NewFormatter(false)
	line := f.Render(model.ViewSnapshot{
		Status: model.StatusReady,
		Comparison: &model.ComparisonResult{
			NvidiaCapTrillions:  4.2,
			CryptoCapTrillions:  3.5,
			DifferenceTrillions: 0.7,
			DifferencePercent:   20,
		},
	})

	for _, want := range []string{"NVDA $4.20T", "CRYPTO $3.50T", "Δ=+0.70T (+20.00%)"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
}

func TestFormatterRenderError(t *testing.T) {
	f := NewFormatter(false)
	line := f.Render(model.ViewSnapshot{
		Status: model.StatusError,
		Errors: []model.SourceError{{Source: model.SourceQuote, Message: "NVIDIA data could not be loaded"}},
	})
	if !strings.Contains(line, "error: NVIDIA data could not be loaded") {
		t.Errorf("unexpected line %q", line)
	}
}

func TestFormatterColor(t *testing.T) {
	f := NewFormatter(true)
	line := f.Render(model.ViewSnapshot{Status: model.StatusLoading})
	if !strings.Contains(line, ansiYellow) {
		t.Errorf("expected colored output, got %q", line)
	}
}
