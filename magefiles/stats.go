//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// docFiles are the markdown documents counted by Stats.
var docFiles = []string{"README.md", "DESIGN.md", "SPEC_FULL.md"}

// Stats prints one JSON line with Go line counts per top-level package
// directory and word counts for the design documents.
func Stats() error {
	prod := map[string]int{}
	test := map[string]int{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if path != "." && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") ||
				base == "vendor" || base == binaryDir || base == "magefiles") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		pkg := filepath.ToSlash(filepath.Dir(path))
		if strings.HasSuffix(path, "_test.go") {
			test[pkg] += count
		} else {
			prod[pkg] += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	words := map[string]int{}
	for _, name := range docFiles {
		if n, err := countWordsInFile(name); err == nil {
			words[name] = n
		}
	}

	record := map[string]any{
		"go_loc_prod": sum(prod),
		"go_loc_test": sum(test),
		"go_loc":      sum(prod) + sum(test),
		"packages":    packageTotals(prod, test),
		"doc_words":   words,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

type packageCount struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

func packageTotals(prod, test map[string]int) []packageCount {
	seen := map[string]bool{}
	for k := range prod {
		seen[k] = true
	}
	for k := range test {
		seen[k] = true
	}
	out := make([]packageCount, 0, len(seen))
	for k := range seen {
		out = append(out, packageCount{Package: k, Prod: prod[k], Test: test[k]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	inWord := false
	for _, r := range string(data) {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count, nil
}
