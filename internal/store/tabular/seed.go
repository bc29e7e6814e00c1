package tabular

import (
	"bufio"
	"os"
	"strings"
)

// DefaultCategories seed the category table when no seed file is present.
var DefaultCategories = []string{
	"Groceries",
	"Rent",
	"Utilities",
	"Transportation",
	"Dining Out",
	"Entertainment",
	"Healthcare",
	"Shopping",
	"Other",
}

// ReadSeedFile reads one category per line, skipping blanks and # comments.
// A missing or empty file yields DefaultCategories.
func ReadSeedFile(path string) []string {
	lines := readLines(path)
	if len(lines) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return lines
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe keeps the first occurrence of each value in input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
