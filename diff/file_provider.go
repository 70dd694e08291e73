package diff

import (
	"fmt"
	"io"
	"os"
)

// UnifiedDiffProvider serves hunks from unified-diff text supplied directly
// — a patch file on disk or stdin — instead of asking git or the GitHub
// API. This is the provider behind `plan --diff`, and the natural one for
// CI systems that already hold the patch.
type UnifiedDiffProvider struct {
	Text string
}

// NewUnifiedDiffProviderFromFile reads path ("-" for stdin) into a provider.
func NewUnifiedDiffProviderFromFile(path string) (*UnifiedDiffProvider, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading diff %s: %w", path, err)
	}
	return &UnifiedDiffProvider{Text: string(data)}, nil
}

// GetChangedFiles returns the distinct file paths named in the diff.
func (p *UnifiedDiffProvider) GetChangedFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, h := range parseUnifiedDiff(p.Text) {
		if !seen[h.File] {
			seen[h.File] = true
			files = append(files, h.File)
		}
	}
	return files, nil
}

// GetChangedHunks parses the diff text into per-file line-range Hunks.
func (p *UnifiedDiffProvider) GetChangedHunks() ([]Hunk, error) {
	return parseUnifiedDiff(p.Text), nil
}
