package build

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Discover lists the markdown sources directly inside dir, sorted by name.
// Hidden files are ignored.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.FileSystemError("read input directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
