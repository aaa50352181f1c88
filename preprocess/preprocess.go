// Package preprocess implements the #include textual-splicing preprocessor
// contract external to the compiler: quoted includes resolve against the
// source file's directory, angle-bracket includes against a fixed libc dir.
package preprocess

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	quotedInclude = regexp.MustCompile(`^\s*#include\s+"(.+)"\s*$`)
	angleInclude  = regexp.MustCompile(`^\s*#include\s+<(.+)>\s*$`)
)

// StdDir is the fixed directory angle-bracket includes resolve against.
const StdDir = "./libc"

// Preprocess expands every #include directive in path, returning the fully
// spliced source text ready for the external AST parser.
func Preprocess(path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return expandIncludes(string(text), filepath.Dir(path))
}

func expandIncludes(text, sourceDir string) (string, error) {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()

		if m := quotedInclude.FindStringSubmatch(line); m != nil {
			included, err := expandIncludeFile(filepath.Join(sourceDir, m[1]))
			if err != nil {
				return "", err
			}
			out.WriteString(included)
			continue
		}

		if m := angleInclude.FindStringSubmatch(line); m != nil {
			included, err := expandIncludeFile(filepath.Join(StdDir, m[1]))
			if err != nil {
				return "", err
			}
			out.WriteString(included)
			continue
		}

		out.WriteString(line)
		out.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("preprocess: %w", err)
	}
	return out.String(), nil
}

func expandIncludeFile(path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("preprocess: #include %q: %w", path, err)
	}
	return expandIncludes(string(text), filepath.Dir(path))
}
