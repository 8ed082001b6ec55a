package internaldefs

import (
	"strings"
	"testing"
)

func TestCounterDefsUniqueAndPrefixed(t *testing.T) {
	seenName := map[string]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "portal_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %q does not follow portal_*_total", def.Name)
		}
		if seenName[def.Name] {
			t.Fatalf("duplicate counter name %q", def.Name)
		}
		seenName[def.Name] = true
	}
}

func TestBoundsAgree(t *testing.T) {
	if len(HistogramBounds) != 8 || len(HistogramBoundSuffix) != 8 {
		t.Fatalf("expected 8 bounds, got %d labels and %d suffixes", len(HistogramBounds), len(HistogramBoundSuffix))
	}
	if len(HistogramBoundSeconds) != len(HistogramBounds)-1 {
		t.Fatalf("expected %d finite bounds, got %d", len(HistogramBounds)-1, len(HistogramBoundSeconds))
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 0, 2, 0, 0, 0, 0, 3, 99}))
	want := [8]uint64{1, 1, 3, 3, 3, 3, 3, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
