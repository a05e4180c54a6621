package benchmark_test

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/cubego"
	"github.com/hupe1980/cubego/compress"
	"github.com/hupe1980/cubego/measure"
	"github.com/hupe1980/cubego/testutil"
)

const benchRows = 100000

func benchTable() *testutil.Table {
	rng := testutil.NewRNG(1)
	table := testutil.GenerateTable(rng, benchRows,
		testutil.Categorical("channel", 4),
		testutil.Categorical("product", 256),
		testutil.Categorical("region", 16),
	)
	table.AddMeasure(rng, "sales", 0.01)
	return table
}

func benchCube(b *testing.B, extra ...func(cubego.Builder) cubego.Builder) *cubego.Cube {
	b.Helper()

	builder := benchTable().Builder()
	for _, f := range extra {
		builder = f(builder)
	}
	cube, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}
	return cube
}

func BenchmarkBuild(b *testing.B) {
	b.ReportAllocs()

	table := benchTable()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := table.Builder().Build(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Narrow(b *testing.B) {
	b.ReportAllocs()

	cube := benchCube(b)
	preds := testutil.Predicates(map[string][]string{
		"channel": {testutil.Member("channel", 0)},
		"product": {testutil.Member("product", 17)},
		"region":  {testutil.Member("region", 3)},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cube.Get("sales", measure.FuncSum, preds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Wide(b *testing.B) {
	b.ReportAllocs()

	cube := benchCube(b)
	preds := testutil.Predicates(map[string][]string{
		"channel": {testutil.Member("channel", 0), testutil.Member("channel", 1)},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cube.Get("sales", measure.FuncSum, preds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Cached(b *testing.B) {
	b.ReportAllocs()

	cube := benchCube(b, func(bb cubego.Builder) cubego.Builder { return bb.ResultCache(64) })
	preds := testutil.Predicates(map[string][]string{
		"channel": {testutil.Member("channel", 0)},
		"product": {testutil.Member("product", 17)},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cube.Get("sales", measure.FuncSum, preds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Parallel(b *testing.B) {
	cube := benchCube(b)
	preds := testutil.Predicates(map[string][]string{
		"channel": {testutil.Member("channel", 0)},
		"product": {testutil.Member("product", 17)},
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := cube.Get("sales", measure.FuncSum, preds); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkEvaluate(b *testing.B) {
	b.ReportAllocs()

	cube := benchCube(b)
	preds := testutil.Predicates(map[string][]string{
		"channel": {testutil.Member("channel", 0)},
		"product": {testutil.Member("product", 17), testutil.Member("product", 42)},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cube.Evaluate(preds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSave(b *testing.B) {
	for _, name := range []string{"zstd", "lz4", "none"} {
		b.Run(name, func(b *testing.B) {
			codec, _ := compress.ByName(name)
			cube := benchCube(b, func(bb cubego.Builder) cubego.Builder { return bb.Codec(codec) })
			dir := b.TempDir()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := cube.Save(filepath.Join(dir, "cube.nc")); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLoad(b *testing.B) {
	cube := benchCube(b)
	filename := filepath.Join(b.TempDir(), "cube.nc")
	if err := cube.Save(filename); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cubego.Load(filename); err != nil {
			b.Fatal(err)
		}
	}
}
