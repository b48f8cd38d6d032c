package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-course-api/internal/codec"
)

type result struct {
	Path      string
	Courses   int
	Canonical bool
	Stable    bool
	Error     error
}

func main() {
	var (
		dir      string
		pattern  string
		layout   string
		timezone string
	)

	flag.StringVar(&dir, "dir", "data", "Directory holding term documents")
	flag.StringVar(&pattern, "pattern", "*.txt", "Glob selecting term documents inside dir")
	flag.StringVar(&layout, "date-layout", codec.DefaultDateLayout, "Date layout used by the documents")
	flag.StringVar(&timezone, "timezone", "UTC", "Time zone used to read document dates")
	flag.Parse()

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Fatalf("invalid timezone: %v", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		log.Fatalf("invalid pattern: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("no documents matched %s", filepath.Join(dir, pattern))
	}
	sort.Strings(paths)

	c := codec.New(codec.DateFormat{Layout: layout, Location: loc})
	var failures int
	results := make([]result, 0, len(paths))
	for _, path := range paths {
		res := check(c, path)
		if res.Error != nil || !res.Stable {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Documents: %d, failures: %d\n", len(results), failures)
	if failures > 0 {
		os.Exit(1)
	}
}

// check decodes a document, re-encodes it and verifies that a second pass
// reproduces the first encoding byte for byte.
func check(c *codec.Codec, path string) result {
	res := result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err
		return res
	}
	text := strings.ReplaceAll(string(data), "\r", "")

	term, err := c.DecodeTerm(text)
	if err != nil {
		res.Error = fmt.Errorf("decode: %w", err)
		return res
	}
	res.Courses = len(term.Courses)

	first, err := c.EncodeTerm(term)
	if err != nil {
		res.Error = fmt.Errorf("encode: %w", err)
		return res
	}
	again, err := c.DecodeTerm(first)
	if err != nil {
		res.Error = fmt.Errorf("decode re-encoded: %w", err)
		return res
	}
	second, err := c.EncodeTerm(again)
	if err != nil {
		res.Error = fmt.Errorf("encode twice: %w", err)
		return res
	}

	res.Stable = first == second
	res.Canonical = strings.TrimSpace(text) == strings.TrimSpace(first)
	return res
}

func printReport(results []result) {
	fmt.Println("| Document | Courses | Stable | Canonical | Error |")
	fmt.Println("| --- | --- | --- | --- | --- |")
	for _, r := range results {
		errMsg := ""
		if r.Error != nil {
			errMsg = r.Error.Error()
		}
		fmt.Printf("| %s | %d | %t | %t | %s |\n", r.Path, r.Courses, r.Stable, r.Canonical, errMsg)
	}
}
