package main

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ncmdump/go-ncmdump/source"
	"golang.org/x/exp/slices"
)

// inputExts are the extensions picked up when walking directories.
var inputExts = []string{".ncm", ".qmc0", ".qmc3", ".qmcflac", ".qmcogg"}

// expandInputs resolves the command line matchers into a list of containers.
// Globs are expanded, directories are walked for ncm and qmc files and URLs are kept
// as they are. A matcher that matches nothing is kept so that opening it
// reports a proper error.
func expandInputs(matchers []string) ([]string, error) {
	var inputs []string
	seen := map[string]bool{}

	add := func(input string) {
		if !seen[input] {
			seen[input] = true
			inputs = append(inputs, input)
		}
	}

	for _, matcher := range matchers {
		if source.IsRemote(matcher) {
			add(matcher)
			continue
		}

		matches, err := filepath.Glob(matcher)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", matcher, err)
		} else if len(matches) == 0 {
			add(matcher)
			continue
		}

		for _, match := range matches {
			err := filepath.WalkDir(match, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if d.IsDir() {
					return nil
				}

				// explicit files are taken whatever their extension
				if p == match || slices.Contains(inputExts, strings.ToLower(filepath.Ext(p))) {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed walking %s: %w", match, err)
			}
		}
	}

	return inputs, nil
}

// outputBase returns the output path without extension for an input.
func outputBase(input, outputDir string) string {
	var dir, name string
	if source.IsRemote(input) {
		dir, name = ".", "download"
		if u, err := url.Parse(input); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			name = path.Base(u.Path)
		}
	} else {
		dir, name = filepath.Dir(input), filepath.Base(input)
	}

	if outputDir != "" {
		dir = outputDir
	}

	return filepath.Join(dir, strings.TrimSuffix(name, path.Ext(name)))
}
