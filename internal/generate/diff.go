package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// diffAgainstFile returns a unified diff between the current content of path
// (empty if absent) and the new content. An empty string means no change.
func diffAgainstFile(path, content string) (string, error) {
	previous, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read previous artifact %s: %w", path, err)
	}
	if string(previous) == content {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(previous)),
		B:        difflib.SplitLines(content),
		FromFile: path + " (previous)",
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}
	return text, nil
}
