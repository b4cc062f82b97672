package scanner

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry describes one discovered stylesheet during a scan pass. It is
// transient: nothing outlives the pass that produced it.
type FileEntry struct {
	Filepath string
	Dir      string
	CTime    time.Time
}

type Walker struct {
	classifier *Classifier
	maxDepth   int
	strict     bool
}

func NewWalker(classifier *Classifier, maxDepth int, strict bool) *Walker {
	if maxDepth <= 0 {
		maxDepth = 30
	}
	return &Walker{classifier: classifier, maxDepth: maxDepth, strict: strict}
}

// Walk enumerates accepted stylesheet files under root, invoking fn once per
// file as it is discovered. Traversal errors abort the walk only in strict
// mode; otherwise they are absorbed and the walk continues elsewhere.
func (w *Walker) Walk(root string, fn func(FileEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if w.strict {
				return err
			}
			slog.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if w.classifier.Excluded(rel) {
				return filepath.SkipDir
			}
			if pathDepth(rel) >= w.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if w.classifier.Excluded(rel) || !w.classifier.ShouldParse(path) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			if w.strict {
				return infoErr
			}
			slog.Debug("skipping unstattable file", "path", path, "error", infoErr)
			return nil
		}

		return fn(FileEntry{
			Filepath: path,
			Dir:      filepath.Dir(path),
			CTime:    info.ModTime(),
		})
	})
}

// pathDepth counts directory levels below the workspace root.
func pathDepth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
