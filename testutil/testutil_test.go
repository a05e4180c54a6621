package testutil

import (
	"math"
	"testing"
)

func TestGenerateTableDeterministic(t *testing.T) {
	a := GenerateTable(NewRNG(42), 100, Categorical("channel", 4))
	b := GenerateTable(NewRNG(42), 100, Categorical("channel", 4))

	for i := 0; i < 100; i++ {
		if a.Dimensions["channel"][i] != b.Dimensions["channel"][i] {
			t.Fatalf("row %d differs across same-seed generations", i)
		}
	}
}

func TestScanMatchesMissingSemantics(t *testing.T) {
	table := &Table{
		Rows:       4,
		DimOrder:   []string{"channel"},
		Dimensions: map[string][]string{"channel": {"a", "", "a", "b"}},
		MeasOrder:  []string{"m"},
		Measures:   map[string][]float64{"m": {1, 2, math.NaN(), 8}},
	}

	preds := map[string][]string{"channel": {"a"}}
	if got := table.ScanCount(preds); got != 2 {
		t.Errorf("count %d, want 2", got)
	}
	if got := table.ScanSum("m", preds); got != 1 {
		t.Errorf("sum %v, want 1", got)
	}
	if got, ok := table.ScanMin("m", preds); !ok || got != 1 {
		t.Errorf("min %v ok=%v, want 1", got, ok)
	}
	if _, ok := table.ScanMin("m", map[string][]string{"channel": {"zzz"}}); ok {
		t.Error("min over no rows should report no data")
	}
}
