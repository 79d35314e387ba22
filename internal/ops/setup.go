package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hvariant/shreddit2/internal/errors"
)

// ArchiveFile is the file name written inside each category directory.
const ArchiveFile = "posts"

// Layout maps each category to its directory under <base>/<username>.
type Layout struct {
	Root string              `json:"root"`
	Dirs map[Category]string `json:"dirs"`
}

// Path returns the archive file path for category.
func (l *Layout) Path(c Category) string {
	return filepath.Join(l.Dirs[c], ArchiveFile)
}

// Setup ensures the four category directories exist under baseDir/username.
// It is safe to call repeatedly.
func Setup(baseDir, username string) (*Layout, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.NewInvalidRequest("username is required")
	}
	if baseDir == "" {
		baseDir = "."
	}

	root := filepath.Join(baseDir, SanitizeForFilename(username))
	layout := &Layout{
		Root: root,
		Dirs: make(map[Category]string, len(Categories)),
	}
	for _, c := range Categories {
		dir := filepath.Join(root, string(c))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to create %s directory: %w", c, err))
		}
		layout.Dirs[c] = dir
	}
	return layout, nil
}

// SanitizeForFilename sanitizes a string for safe use as a single path component.
// Valid Reddit usernames ([A-Za-z0-9_-]) pass through unchanged.
func SanitizeForFilename(s string) string {
	// Replace path separators with dashes
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")

	// Remove null bytes and other control characters
	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = strings.TrimSpace(result.String())

	// "." and ".." would resolve outside the component.
	if strings.Trim(s, ".") == "" {
		s = "unnamed"
	}

	return s
}
