package plugin

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kostore/kostore/lib"
)

// hasMetaFile reports whether either accepted metadata filename exists at
// this tree level.
func hasMetaFile(t *lib.DirTree) bool {
	return t.HasFile(MetaFile) || t.HasFile(MetaFileAlt)
}

// Locate finds the directory constituting a valid plugin inside a resolved
// directory tree. Detection priority, first match wins:
//
//  1. root layout: entry and metadata file directly at the root
//  2. subdir layout: a first-level subdirectory satisfying rule 1
//  3. split layout: entry at the root, metadata in any first-level
//     subdirectory
//
// The boolean is false when no layout applies; callers treat that as "no
// installable plugin", not as a transport error.
func Locate(tree *lib.DirTree) (Layout, bool) {
	if tree == nil {
		return Layout{}, false
	}

	entryAtRoot := tree.HasFile(EntryFile)

	if entryAtRoot && hasMetaFile(tree) {
		return Layout{
			EntryFilePresent: true,
			MetaFilePresent:  true,
			Kind:             LayoutRoot,
		}, true
	}

	for _, name := range tree.DirNames() {
		sub := tree.Subdir(name)
		if sub == nil {
			continue
		}
		if sub.HasFile(EntryFile) && hasMetaFile(sub) {
			return Layout{
				RootDir:          name,
				EntryFilePresent: true,
				MetaFilePresent:  true,
				Kind:             LayoutSubdir,
			}, true
		}
	}

	if entryAtRoot {
		for _, name := range tree.DirNames() {
			if hasMetaFile(tree.Subdir(name)) {
				return Layout{
					EntryFilePresent: true,
					MetaFilePresent:  true,
					Kind:             LayoutSplit,
				}, true
			}
		}
	}

	return Layout{}, false
}

// LocateExtracted finds a plugin root inside a freshly extracted archive
// directory, adding the degraded fallbacks that remote browsing never
// uses. Priority: a first-level directory holding both files, any
// .koplugin directory anywhere holding both files, then any first-level
// directory holding the entry file alone (weak match). The returned
// RootDir is the filesystem path of the detected directory.
func LocateExtracted(root string) (Layout, bool) {
	firstLevel, err := firstLevelDirs(root)
	if err != nil {
		return Layout{}, false
	}

	for _, dir := range firstLevel {
		if fileExists(filepath.Join(dir, EntryFile)) && metaFileExists(dir) {
			return Layout{
				RootDir:          dir,
				EntryFilePresent: true,
				MetaFilePresent:  true,
				Kind:             LayoutRoot,
			}, true
		}
	}

	var found string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" || !d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), DirSuffix) &&
			fileExists(filepath.Join(path, EntryFile)) &&
			metaFileExists(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if found != "" {
		return Layout{
			RootDir:          found,
			EntryFilePresent: true,
			MetaFilePresent:  true,
			Kind:             LayoutSubdir,
		}, true
	}

	for _, dir := range firstLevel {
		if fileExists(filepath.Join(dir, EntryFile)) {
			return Layout{
				RootDir:          dir,
				EntryFilePresent: true,
				Kind:             LayoutRoot,
			}, true
		}
	}

	return Layout{}, false
}

func firstLevelDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

func metaFileExists(dir string) bool {
	return fileExists(filepath.Join(dir, MetaFile)) || fileExists(filepath.Join(dir, MetaFileAlt))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
