package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// OptionSourceSpaces keeps the source side of a mapping line whole instead
// of splitting it into several keys on whitespace.
const OptionSourceSpaces = "source-spaces"

const optionsPrefix = "#:options:"

// Warner receives non-fatal diagnostics.
type Warner interface {
	Warnf(format string, args ...any)
}

// MappingOptions controls how a mapping file is read.
type MappingOptions struct {
	// Inverse swaps the source and target columns.
	Inverse bool
}

// LoadMapping reads a tab-separated source-to-target mapping file.
// Malformed lines are reported through warn and skipped.
func LoadMapping(path string, opts MappingOptions, warn Warner) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMapping(f, path, opts, warn)
}

// ParseMapping reads a mapping from r; name identifies it in warnings.
func ParseMapping(r io.Reader, name string, opts MappingOptions, warn Warner) (map[string]string, error) {
	mapping := make(map[string]string)
	fileOpts := map[string]bool{OptionSourceSpaces: false}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	linenum := 0
	warnf := func(format string, args ...any) {
		warn.Warnf("mapping file %s, line %d: "+format, append([]any{name, linenum}, args...)...)
	}

	for scanner.Scan() {
		linenum++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if strings.HasPrefix(line, optionsPrefix) {
			for _, opt := range strings.Fields(line[len(optionsPrefix):]) {
				if _, ok := fileOpts[opt]; !ok {
					warnf("unrecognized file option: %s", opt)
					continue
				}
				fileOpts[opt] = true
			}
			continue
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if n := len(fields); n < 2 {
			warnf("%d tab-separated fields instead of 2; skipping.", n)
			continue
		} else if n > 2 {
			warnf("%d tab-separated fields instead of 2; skipping extra fields.", n)
		}

		src, trg := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		switch {
		case src == "" && trg == "":
			warnf("empty source and target; skipping.")
			continue
		case src == "":
			warnf("empty source; skipping.")
			continue
		case trg == "":
			warnf("empty target; skipping.")
			continue
		}
		if opts.Inverse {
			src, trg = trg, src
		}

		keys := []string{src}
		if !fileOpts[OptionSourceSpaces] {
			keys = strings.Fields(src)
		}
		for _, key := range keys {
			if prev, ok := mapping[key]; ok {
				if prev != trg {
					warnf("mapping %q to %q overrides previous mapping to %q", key, trg, prev)
				} else {
					warnf("duplicate mapping %q to %q", key, trg)
				}
			}
			mapping[key] = trg
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mapping file %s: %w", name, err)
	}
	return mapping, nil
}
