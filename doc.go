// Package cubego provides an embedded multi-dimensional bitmap index for
// aggregated point queries over tabular data.
//
// A Cube is built once from named columns (categorical dimensions and
// numeric measures) and answers filter+aggregate queries without scanning
// the table: each dimension keeps a Roaring bitmap posting list per
// distinct value, queries OR the requested values within a dimension and
// AND across dimensions (most selective first), and the aggregate is
// gathered by direct indexed access into the dense measure array.
//
// # Quick Start
//
//	cube, _ := cubego.New().
//	    DimensionStrings("channel", []string{"Online", "Online", "Retail"}).
//	    DimensionStrings("product", []string{"Apple", "Pear", "Apple"}).
//	    Measure("sales", []float64{100, 150, 200}).
//	    Build()
//
//	total, _ := cube.Get("sales", measure.FuncSum, cubego.Predicates{
//	    "channel": {column.String("Online")},
//	})
//
// Predicate values absent from a dimension's dictionary silently match
// zero rows; unknown dimension or measure names are schema errors.
//
// # Immutability
//
// A Cube is immutable after Build. Concurrent queries from any number of
// goroutines are safe without locking because no operation mutates shared
// state. Build-time and load-time failures never yield a partial Cube.
//
// # Persistence
//
//	_ = cube.Save("sales.cube")
//	cube, _ = cubego.Load("sales.cube")
//
// Artifacts are single binary files with a versioned header, compressed
// dictionary/bitmap/array sections and a CRC32 checksum; corrupt or
// truncated files fail closed on load.
package cubego
