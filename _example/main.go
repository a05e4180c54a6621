package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hupe1980/cubego"
	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/measure"
	"github.com/hupe1980/cubego/testutil"
)

func main() {
	seed := int64(4711)
	rows := 1000000

	rng := testutil.NewRNG(seed)
	table := testutil.GenerateTable(rng, rows,
		testutil.Categorical("channel", 4),
		testutil.Categorical("product", 256),
		testutil.Categorical("region", 16),
	)
	table.AddMeasure(rng, "sales", 0.01)

	fmt.Println("--- Build ---")
	fmt.Println("Rows:", rows)

	start := time.Now()
	cube, err := table.Builder().ResultCache(1024).Build()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Duration:", time.Since(start))

	stats := cube.Stats()
	fmt.Println("Bitmaps:", stats.BitmapCount)
	fmt.Printf("Index memory: %.1f MiB\n", float64(stats.MemoryBytes)/(1<<20))

	fmt.Println("--- Query ---")
	preds := cubego.Predicates{
		"channel": {column.String("channel-0")},
		"product": {column.String("product-17"), column.String("product-42")},
	}

	start = time.Now()
	sum, err := cube.Get("sales", measure.FuncSum, preds)
	if err != nil {
		log.Fatal(err)
	}
	count, err := cube.Get("sales", measure.FuncCount, preds)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Duration:", time.Since(start))

	s, _ := sum.AsFloat64()
	n, _ := count.AsInt64()
	fmt.Printf("Sum: %.2f over %d rows\n", s, n)

	fmt.Println("--- Persistence ---")
	dir, err := os.MkdirTemp("", "cubego")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	filename := dir + "/sales.nc"

	start = time.Now()
	if err := cube.Save(filename); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Save:", time.Since(start))

	fi, err := os.Stat(filename)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Artifact: %.1f MiB\n", float64(fi.Size())/(1<<20))

	start = time.Now()
	loaded, err := cubego.Load(filename)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Load:", time.Since(start))

	check, err := loaded.Get("sales", measure.FuncSum, preds)
	if err != nil {
		log.Fatal(err)
	}
	c, _ := check.AsFloat64()
	fmt.Printf("Reloaded sum: %.2f\n", c)
}
