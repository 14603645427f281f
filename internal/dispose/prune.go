package dispose

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PruneResult reports what the empty-directory pass did.
type PruneResult struct {
	Removed  int
	Failures []error
}

// PruneEmptyDirs removes every directory under root left with zero
// entries, deepest first, so a parent emptied by its children's removal is
// still caught in the same pass. The root itself is never removed. In
// dry-run mode nothing is deleted; directories that would fall are counted
// by treating already-counted children as gone.
func PruneEmptyDirs(root string, dryRun bool) *PruneResult {
	result := &PruneResult{}

	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root {
				result.Failures = append(result.Failures, err)
			}
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deepest paths first; depth is the separator count.
	sort.Slice(dirs, func(i, j int) bool {
		di := strings.Count(dirs[i], string(filepath.Separator))
		dj := strings.Count(dirs[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return dirs[i] > dirs[j]
	})

	wouldRemove := make(map[string]bool)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			result.Failures = append(result.Failures, err)
			continue
		}

		remaining := 0
		for _, entry := range entries {
			if dryRun && entry.IsDir() && wouldRemove[filepath.Join(dir, entry.Name())] {
				continue
			}
			remaining++
		}
		if remaining > 0 {
			continue
		}

		if dryRun {
			wouldRemove[dir] = true
			result.Removed++
			continue
		}
		if err := os.Remove(dir); err != nil {
			result.Failures = append(result.Failures, err)
			continue
		}
		result.Removed++
	}

	return result
}
