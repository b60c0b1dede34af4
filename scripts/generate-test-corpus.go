//go:build ignore

// Package main generates a synthetic source tree for exercising scope.
// Usage: go run scripts/generate-test-corpus.go -files 1000 -output testdata/bench
//
// The tree mixes files picked by extension, extensionless scripts that only a
// MIME probe recognises, files that are excluded, and VCS directories that
// must never be visited. The expected number of indexed paths is printed.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of files to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
	depth     = flag.Int("depth", 3, "Maximum directory depth")
)

// kind is one class of generated file.
type kind struct {
	name     string
	share    int // percent of -files
	included bool
	gen      func(i int) (name, body string)
}

var kinds = []kind{
	{"c", 25, true, func(i int) (string, string) {
		return fmt.Sprintf("%s%d.c", randomWord(nouns), i),
			fmt.Sprintf("#include <stdio.h>\n\nint %s_%d(void)\n{\n\treturn %d;\n}\n", randomWord(verbs), i, i)
	}},
	{"header", 10, true, func(i int) (string, string) {
		return fmt.Sprintf("%s%d.h", randomWord(nouns), i),
			fmt.Sprintf("#pragma once\n\nint %s_%d(void);\n", randomWord(verbs), i)
	}},
	{"go", 10, true, func(i int) (string, string) {
		return fmt.Sprintf("%s%d.go", randomWord(nouns), i),
			fmt.Sprintf("package pkg%d\n\nfunc %s() int { return %d }\n", i, randomWord(verbs), i)
	}},
	{"python", 5, true, func(i int) (string, string) {
		return fmt.Sprintf("%s%d.py", randomWord(nouns), i),
			fmt.Sprintf("def %s_%d():\n    return %d\n", randomWord(verbs), i, i)
	}},
	{"script", 5, true, func(i int) (string, string) {
		// No extension: only the type probe can include it.
		return fmt.Sprintf("run-%s%d", randomWord(verbs), i),
			fmt.Sprintf("#!/bin/sh\necho %d\n", i)
	}},
	{"text", 25, false, func(i int) (string, string) {
		return fmt.Sprintf("notes%d.txt", i),
			fmt.Sprintf("Notes on %s, item %d.\n", randomWord(nouns), i)
	}},
	{"markdown", 10, false, func(i int) (string, string) {
		return fmt.Sprintf("README%d.md", i),
			fmt.Sprintf("# %s\n\nGenerated file %d.\n", randomWord(nouns), i)
	}},
	{"data", 10, false, func(i int) (string, string) {
		b := make([]byte, 256)
		rand.Read(b)
		return fmt.Sprintf("blob%d.bin", i), string(b)
	}},
}

var (
	nouns = []string{
		"handler", "manager", "service", "parser", "buffer",
		"cache", "queue", "pool", "router", "scheduler",
	}
	verbs = []string{
		"process", "handle", "execute", "create", "delete",
		"update", "read", "parse", "format", "validate",
	}
	dirs = []string{"src", "lib", "include", "tools", "tests", "docs"}
)

func main() {
	flag.Parse()
	rand.Seed(*seed)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d files in %s...\n", *numFiles, *outputDir)

	var generated, included, index int
	for k, kd := range kinds {
		count := *numFiles * kd.share / 100
		if k == len(kinds)-1 {
			count = *numFiles - generated
		}
		for i := 0; i < count; i++ {
			name, body := kd.gen(index)
			index++
			path := filepath.Join(randomDir(), name)
			if err := writeFile(path, body); err != nil {
				fmt.Fprintf(os.Stderr, "Error generating %s file %d: %v\n", kd.name, i, err)
				continue
			}
			generated++
			if kd.included {
				included++
			}
		}
	}

	// Excluded by the built-in substrings; none of these may be indexed.
	for _, vcs := range []string{".git", ".svn", "CVS"} {
		path := filepath.Join(*outputDir, "src", vcs, "objects", "hook.c")
		if err := writeFile(path, "int hook(void) { return 0; }\n"); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", path, err)
		}
	}

	fmt.Printf("Generated %d files, %d should be indexed.\n", generated, included)
}

func randomWord(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

// randomDir returns a directory under the output at a random depth.
func randomDir() string {
	parts := []string{*outputDir}
	for d := rand.Intn(*depth + 1); d > 0; d-- {
		parts = append(parts, randomWord(dirs))
	}
	return filepath.Join(parts...)
}

func writeFile(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if len(body) > 2 && body[:2] == "#!" {
		mode = 0o755
	}
	return os.WriteFile(path, []byte(body), mode)
}
