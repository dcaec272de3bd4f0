// cmd/nasrtool/main.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// nasrtool forces a one-shot airspace cycle download/parse and prints
// the resulting index's sizes, for operators bringing up a new data
// directory or debugging a release that failed to load.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/swimfuse/swimfuse/pkg/airspace"
	"github.com/swimfuse/swimfuse/pkg/log"
)

var (
	baseURL = flag.String("base-url", "https://nfdc.faa.gov/webContent/28DaySub", "dated archive base URL")
	dataDir = flag.String("data-dir", "airspace-data", "directory to extract cycle data into")
)

func main() {
	flag.Parse()

	lg := log.New("info", "")
	loader := airspace.NewLoader(*baseURL, *dataDir, lg)

	idx, err := loader.Load(context.Background(), time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "nasrtool: %v\n", err)
		os.Exit(1)
	}

	overlay := idx.Overlay()
	centerlines := idx.Centerlines()
	fmt.Printf("cycle:       %s\n", idx.Cycle)
	fmt.Printf("airports:    %d\n", len(overlay))
	fmt.Printf("centerlines: %d\n", len(centerlines))
}
