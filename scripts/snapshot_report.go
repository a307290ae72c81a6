// snapshot_report.go - Report what snapshot preparation does to a page
//
// Usage: go run scripts/snapshot_report.go <url-or-file>
//
// Example:
//   go run scripts/snapshot_report.go https://example.com/listing
//   go run scripts/snapshot_report.go testdata/page.html

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/AmeRaino/dompick/pkg/fetch"
	"github.com/AmeRaino/dompick/pkg/genai"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/snapshot_report.go <url-or-file>")
		os.Exit(1)
	}

	html, err := loadInput(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Input: %s\n\n", humanize.Bytes(uint64(len(html))))
	fmt.Printf("%-12s %-12s %s\n", "limit", "output", "kept")

	for _, limit := range []int{0, 300000, 100000, 50000} {
		out := genai.Prepare(html, limit)
		label := "default"
		if limit > 0 {
			label = humanize.Bytes(uint64(limit))
		}
		fmt.Printf("%-12s %-12s %.0f%%\n",
			label,
			humanize.Bytes(uint64(len(out))),
			float64(len(out))/float64(len(html))*100)
	}
}

func loadInput(arg string) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		fetcher := fetch.NewStatic(fetch.DefaultStaticConfig())
		defer func() { _ = fetcher.Close() }()
		content, err := fetcher.Fetch(context.Background(), arg, fetch.Options{})
		if err != nil {
			return "", err
		}
		return content.HTML, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
