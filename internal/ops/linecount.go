package ops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType is a source language counted by LineCount.
type FileType struct {
	Ext  string
	Name string
}

// LineCountTypes are the file types LineCount reports, in order.
var LineCountTypes = []FileType{
	{"py", "Python"},
	{"html", "HTML"},
	{"css", "CSS"},
	{"js", "Javascript"},
	{"rst", "reST documentation"},
}

// LineCounts holds the newline count per entry of LineCountTypes.
type LineCounts []int

// Total sums all counts.
func (c LineCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func skipDir(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, ".git") || strings.Contains(lower, "_build")
}

// CountLines counts the lines of each LineCountTypes file under dir,
// skipping git metadata and documentation build output.
func CountLines(dir string) (LineCounts, error) {
	index := make(map[string]int, len(LineCountTypes))
	for i, t := range LineCountTypes {
		index["."+t.Ext] = i
	}

	counts := make(LineCounts, len(LineCountTypes))
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		i, ok := index[filepath.Ext(path)]
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		counts[i] += bytes.Count(data, []byte{'\n'})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count lines in %s: %w", dir, err)
	}
	return counts, nil
}

// WriteLineCounts prints one right-aligned line per type with its share of
// the total, followed by the total.
func WriteLineCounts(w io.Writer, counts LineCounts) {
	total := counts.Total()
	fmt.Fprintln(w)
	for i, c := range counts {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(c) / float64(total)
		}
		fmt.Fprintf(w, "%15d lines of %s (%.2f%%)\n", c, LineCountTypes[i].Name, pct)
	}
	fmt.Fprintln(w, strings.Repeat("-", 52))
	fmt.Fprintf(w, "Total: %8d\n", total)
}

// LineCount counts and prints the working directory's lines of code.
func (o *Ops) LineCount(dir string) error {
	counts, err := CountLines(dir)
	if err != nil {
		return err
	}
	WriteLineCounts(o.out, counts)
	return nil
}
