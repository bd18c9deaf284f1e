// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ignore resolves which files under a folder are eligible for
// upload, using layered gitignore-style pattern sources.
//
// Patterns come from four places, applied in order:
//  1. built-in default excludes (anchored at the folder and, when the
//     folder sits inside a git repository, at the repository root)
//  2. the repository root .gitignore
//  3. a repository root .agsearchignore
//  4. a folder-level .agsearchignore
//
// A file is excluded as soon as any layer matches it. Matching uses
// gitwildmatch semantics via github.com/sabhiram/go-gitignore.
package ignore

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the per-project ignore file consulted at the repository
// root and inside the target folder.
const IgnoreFileName = ".agsearchignore"

// DefaultExcludes are always-excluded patterns: VCS internals, secrets,
// and the tool's own files.
var DefaultExcludes = []string{
	".git/",
	".env",
	IgnoreFileName,
	".agsearch/",
}

// Spec is one compiled pattern layer with the directory its patterns are
// relative to.
type Spec struct {
	matcher *gitignore.GitIgnore
	base    string
}

// Document is a discovered file eligible for upload.
type Document struct {
	// RelPath is the slash-separated path relative to the scanned folder.
	RelPath string
	// AbsPath is the absolute filesystem path.
	AbsPath string
}

// FindRepoRoot walks up from start looking for a .git entry and returns the
// containing directory, or "" when start is not inside a git repository.
func FindRepoRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadLines reads a pattern file, returning nil when it does not exist.
func loadLines(path string) []string {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path derives from the scanned folder
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimRight(line, "\r"))
	}
	return out
}

// BuildSpecs assembles the layered ignore specification for folder.
//
// extraPatterns are appended as a final layer anchored at the folder; they
// come from the project configuration's ignore list.
func BuildSpecs(folder string, extraPatterns []string) []Spec {
	specs := []Spec{
		{matcher: gitignore.CompileIgnoreLines(DefaultExcludes...), base: folder},
	}

	repoRoot := FindRepoRoot(folder)
	if repoRoot != "" {
		specs = append(specs, Spec{
			matcher: gitignore.CompileIgnoreLines(DefaultExcludes...),
			base:    repoRoot,
		})

		if lines := loadLines(filepath.Join(repoRoot, ".gitignore")); len(lines) > 0 {
			specs = append(specs, Spec{matcher: gitignore.CompileIgnoreLines(lines...), base: repoRoot})
		}
		if lines := loadLines(filepath.Join(repoRoot, IgnoreFileName)); len(lines) > 0 {
			specs = append(specs, Spec{matcher: gitignore.CompileIgnoreLines(lines...), base: repoRoot})
		}
	}

	if lines := loadLines(filepath.Join(folder, IgnoreFileName)); len(lines) > 0 {
		specs = append(specs, Spec{matcher: gitignore.CompileIgnoreLines(lines...), base: folder})
	}

	if len(extraPatterns) > 0 {
		specs = append(specs, Spec{matcher: gitignore.CompileIgnoreLines(extraPatterns...), base: folder})
	}

	return specs
}

// IsIgnored reports whether path matches any spec layer.
//
// Each layer matches against the path relative to its own base directory;
// paths outside a base are matched against the full path, mirroring how
// the layers were anchored when built.
func IsIgnored(path string, specs []Spec) bool {
	for _, spec := range specs {
		candidate := path
		if rel, err := filepath.Rel(spec.base, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidate = rel
		}
		if spec.matcher.MatchesPath(filepath.ToSlash(candidate)) {
			return true
		}
	}
	return false
}

// ListDocuments enumerates the uploadable files under folder, honoring the
// layered ignore specification, sorted by relative path.
//
// Only regular files are returned. Directories matching an ignore layer
// are not descended into.
func ListDocuments(folder string, extraPatterns []string) ([]Document, error) {
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return nil, err
	}

	specs := BuildSpecs(absFolder, extraPatterns)

	var docs []Document
	err = filepath.WalkDir(absFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absFolder {
			return nil
		}
		if d.IsDir() {
			if IsIgnored(path+string(filepath.Separator), specs) || IsIgnored(path, specs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if IsIgnored(path, specs) {
			return nil
		}
		rel, err := filepath.Rel(absFolder, path)
		if err != nil {
			return err
		}
		docs = append(docs, Document{
			RelPath: filepath.ToSlash(rel),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, nil
}
