// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every message id used with i18n.T exists in the
// primary locale, that every locale carries the same ids and reports ids no
// code refers to.
//
// Usage:
//
//	go run ./tools/i18n-linter [-root .] [-primary zh.yaml]
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const localesDir = "internal/i18n/locales"

// dynamicPrefixes are id prefixes completed at runtime, e.g.
// i18n.T("reason." + string(r)). Ids under them never count as orphaned.
var dynamicPrefixes = []string{"reason."}

var (
	callRe    = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	dynamicRe = regexp.MustCompile(`i18n\.T\("([a-z_.]+\.)"\s*\+`)
)

// report is the outcome of one lint run.
type report struct {
	Used     map[string][]string // id -> files using it
	Missing  []string            // used in code, absent from the primary locale
	Orphaned []string            // in the primary locale, never used
	Gaps     map[string][]string // locale file -> ids it lacks
}

func (r report) failed() bool {
	if len(r.Missing) > 0 {
		return true
	}
	for _, ids := range r.Gaps {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

func main() {
	root := flag.String("root", ".", "project root")
	primary := flag.String("primary", "zh.yaml", "primary locale file name")
	flag.Parse()

	r, err := lint(*root, *primary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, r)
	if r.failed() {
		os.Exit(1)
	}
}

func lint(root, primary string) (report, error) {
	r := report{Gaps: make(map[string][]string)}
	used, err := findUsedKeys(root)
	if err != nil {
		return r, err
	}
	r.Used = used

	dir := filepath.Join(root, localesDir)
	primaryKeys, err := loadKeysFromLocale(filepath.Join(dir, primary))
	if err != nil {
		return r, fmt.Errorf("load primary locale: %w", err)
	}

	for id := range used {
		if _, ok := primaryKeys[id]; !ok {
			r.Missing = append(r.Missing, id)
		}
	}
	for id := range primaryKeys {
		if _, ok := used[id]; ok || isDynamic(id) {
			continue
		}
		r.Orphaned = append(r.Orphaned, id)
	}
	sort.Strings(r.Missing)
	sort.Strings(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, f := range files {
		if filepath.Base(f) == primary {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", f, err)
		}
		var gaps []string
		for id := range primaryKeys {
			if _, ok := keys[id]; !ok {
				gaps = append(gaps, id)
			}
		}
		sort.Strings(gaps)
		r.Gaps[filepath.Base(f)] = gaps
	}
	return r, nil
}

func isDynamic(id string) bool {
	for _, p := range dynamicPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// findUsedKeys scans non-test Go files under root for i18n.T calls with a
// literal id.
func findUsedKeys(root string) (map[string][]string, error) {
	keys := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callRe.FindAllStringSubmatch(string(content), -1) {
			if dynamicRe.MatchString(m[0]) || strings.HasSuffix(m[1], ".") {
				continue
			}
			keys[m[1]] = append(keys[m[1]], path)
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale returns the message ids of a locale file. Nested maps
// are flattened with dots so both layouts are accepted.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		next := k
		if prefix != "" {
			next = prefix + "." + k
		}
		flattenYAML(next, v, keys)
	}
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "%d message ids used in code\n", len(r.Used))
	section := func(title string, ids []string) {
		fmt.Fprintf(w, "\n--- %s ---\n", title)
		if len(ids) == 0 {
			fmt.Fprintln(w, "  none")
			return
		}
		for _, id := range ids {
			fmt.Fprintf(w, "  - %s\n", id)
		}
	}
	section("Missing from primary locale", r.Missing)
	section("Orphaned in primary locale", r.Orphaned)

	files := make([]string, 0, len(r.Gaps))
	for f := range r.Gaps {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		section("Missing from "+f, r.Gaps[f])
	}
}
