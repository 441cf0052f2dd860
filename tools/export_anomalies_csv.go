package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
)

func main() {
	var (
		dbPath  = flag.String("db", "data/stream-anomaly.db", "BoltDB path")
		outPath = flag.String("out", "anomalies.csv", "output CSV file")
	)
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"when", "value", "mean", "stddev", "threshold"}); err != nil {
		fmt.Fprintf(os.Stderr, "write header: %v\n", err)
		os.Exit(1)
	}

	n := 0
	err = st.Iterate(func(ev store.Event) bool {
		row := []string{
			ev.When.UTC().Format(time.RFC3339),
			strconv.FormatFloat(ev.Value, 'g', -1, 64),
			strconv.FormatFloat(ev.Mean, 'g', -1, 64),
			strconv.FormatFloat(ev.StdDev, 'g', -1, 64),
			strconv.FormatFloat(ev.Threshold, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			fmt.Fprintf(os.Stderr, "write row: %v\n", err)
			return false
		}
		n++
		return true
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "iterate: %v\n", err)
		os.Exit(1)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "finish csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d anomalies to %s\n", n, *outPath)
}
