package index

import (
	"testing"

	"github.com/hupe1980/cubego/column"
)

func TestBuildFirstSeenCodes(t *testing.T) {
	vals := column.Strings([]string{"b", "a", "b", "c", "a"})
	d := Build("letters", vals, BuildOptions{})

	if got := d.Cardinality(); got != 3 {
		t.Fatalf("Cardinality = %d, want 3", got)
	}
	// First-seen order: b=0, a=1, c=2.
	for i, want := range []string{"s:b", "s:a", "s:c"} {
		if got := d.Value(uint32(i)).Key(); got != want {
			t.Errorf("Value(%d) = %q, want %q", i, got, want)
		}
	}

	code, ok := d.Lookup(column.String("c"))
	if !ok || code != 2 {
		t.Errorf("Lookup(c) = %d, %v", code, ok)
	}
	if _, ok := d.Lookup(column.String("zzz")); ok {
		t.Error("Lookup of unknown value should fail")
	}
}

func TestBuildSortedCodes(t *testing.T) {
	vals := column.Strings([]string{"b", "a", "c"})
	d := Build("letters", vals, BuildOptions{SortedCodes: true})

	for i, want := range []string{"s:a", "s:b", "s:c"} {
		if got := d.Value(uint32(i)).Key(); got != want {
			t.Errorf("Value(%d) = %q, want %q", i, got, want)
		}
	}
	// Postings follow the values through the remap.
	code, _ := d.Lookup(column.String("a"))
	if got := d.Postings(code).ToArray(); len(got) != 1 || got[0] != 1 {
		t.Errorf("postings for a = %v, want [1]", got)
	}
}

func TestPostingsDisjointAndComplete(t *testing.T) {
	vals := column.Strings([]string{"x", "y", "x", "z", "y", "x"})
	d := Build("dim", vals, BuildOptions{})

	union := NewRowSet()
	var total uint64
	for code := 0; code < d.Cardinality(); code++ {
		p := d.Postings(uint32(code))
		total += p.Cardinality()
		union.Or(p)
	}
	// Disjoint: union cardinality equals the sum of parts.
	if union.Cardinality() != total {
		t.Errorf("postings overlap: union %d, sum %d", union.Cardinality(), total)
	}
	// Complete: no missing values, so the union covers every row.
	if union.Cardinality() != uint64(len(vals)) {
		t.Errorf("union size = %d, want %d", union.Cardinality(), len(vals))
	}
}

func TestMissingValuesDropped(t *testing.T) {
	vals := []column.Value{
		column.String("a"),
		column.Null(),
		column.String("a"),
		column.Null(),
	}
	d := Build("dim", vals, BuildOptions{})

	if got := d.Cardinality(); got != 1 {
		t.Fatalf("Cardinality = %d, want 1", got)
	}
	// The union of all postings is a strict subset of the row range.
	if got := d.Postings(0).ToArray(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("postings = %v, want [0 2]", got)
	}
	// A null predicate value matches zero rows.
	if u := d.Union([]column.Value{column.Null()}); !u.IsEmpty() {
		t.Error("null predicate should select nothing")
	}
}

func TestBoolFastPathMatchesGeneralPath(t *testing.T) {
	bools := []column.Value{
		column.Bool(true),
		column.Bool(false),
		column.Null(),
		column.Bool(true),
	}
	d := Build("promo", bools, BuildOptions{})

	if got := d.Cardinality(); got != 2 {
		t.Fatalf("Cardinality = %d, want 2", got)
	}
	// First-seen: true=0, false=1.
	if d.Value(0).Key() != "b:1" || d.Value(1).Key() != "b:0" {
		t.Errorf("code order = %q, %q", d.Value(0).Key(), d.Value(1).Key())
	}
	if got := d.Postings(0).ToArray(); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("postings(true) = %v, want [0 3]", got)
	}
	if got := d.Postings(1).ToArray(); len(got) != 1 || got[0] != 1 {
		t.Errorf("postings(false) = %v, want [1]", got)
	}
}

func TestBuildEdgeCases(t *testing.T) {
	// Zero rows: empty index, not an error.
	d := Build("empty", nil, BuildOptions{})
	if d.Cardinality() != 0 {
		t.Errorf("empty column cardinality = %d", d.Cardinality())
	}

	// Single distinct value: cardinality 1.
	d = Build("const", column.Strings([]string{"k", "k", "k"}), BuildOptions{})
	if d.Cardinality() != 1 {
		t.Errorf("constant column cardinality = %d", d.Cardinality())
	}
	if got := d.Postings(0).Cardinality(); got != 3 {
		t.Errorf("constant column postings = %d", got)
	}
}

func TestUnion(t *testing.T) {
	vals := column.Strings([]string{"a", "b", "c", "a"})
	d := Build("dim", vals, BuildOptions{})

	u := d.Union([]column.Value{column.String("a"), column.String("c")})
	if got := u.ToArray(); len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Union = %v, want [0 2 3]", got)
	}

	// Unknown members contribute nothing rather than failing.
	u = d.Union([]column.Value{column.String("a"), column.String("nope")})
	if got := u.Cardinality(); got != 2 {
		t.Errorf("Union with unknown = %d rows, want 2", got)
	}
	if u = d.Union(nil); !u.IsEmpty() {
		t.Error("Union of no values should be empty")
	}
}

func TestRestore(t *testing.T) {
	orig := Build("dim", column.Strings([]string{"a", "b", "a"}), BuildOptions{})

	values := make([]column.Value, orig.Cardinality())
	postings := make([]*RowSet, orig.Cardinality())
	for code := 0; code < orig.Cardinality(); code++ {
		values[code] = orig.Value(uint32(code))
		postings[code] = orig.Postings(uint32(code)).Clone()
	}

	got, err := Restore("dim", values, postings)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	code, ok := got.Lookup(column.String("b"))
	if !ok || code != 1 {
		t.Errorf("restored Lookup(b) = %d, %v", code, ok)
	}

	// Shape mismatch and duplicates are rejected.
	if _, err := Restore("dim", values, postings[:1]); err == nil {
		t.Error("Restore with mismatched lengths should fail")
	}
	if _, err := Restore("dim", []column.Value{column.String("a"), column.String("a")},
		[]*RowSet{NewRowSet(), NewRowSet()}); err == nil {
		t.Error("Restore with duplicate values should fail")
	}
}
