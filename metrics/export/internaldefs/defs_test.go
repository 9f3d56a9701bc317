package internaldefs

import (
	"strings"
	"testing"

	"github.com/MrEthical07/cookieauth"
)

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := make(map[cookieauth.MetricID]bool)
	names := make(map[string]bool)
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate id %d", def.ID)
		}
		if names[def.Name] {
			t.Fatalf("duplicate name %s", def.Name)
		}
		if !strings.HasPrefix(def.Name, "cookieauth_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("bad counter name %s", def.Name)
		}
		seen[def.ID] = true
		names[def.Name] = true
	}

	snap := cookieauth.NewMetrics(cookieauth.MetricsConfig{Enabled: true}).Snapshot()
	for id := range snap.Counters {
		if !seen[id] {
			t.Fatalf("counter %d has no definition", id)
		}
	}
}

func TestBucketHelpers(t *testing.T) {
	if len(HistogramUpperBounds)+1 != len(HistogramBoundSuffix) {
		t.Fatalf("bounds %d and suffixes %d disagree", len(HistogramUpperBounds), len(HistogramBoundSuffix))
	}

	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 0, 3}))
	want := [8]uint64{1, 3, 3, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("cumulative = %v, want %v", got, want)
	}
}
