package bridge

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ribbonlang/ribbon/internal/namespace"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

const textExt = ".x"

// skipGlobs are directory-tree patterns Import never descends into or
// ingests from: the on-disk layout spec §6 describes reserves
// ".history/" and ".tags/" as sidecars alongside a namespace segment's
// "*.x" definition files, and ".git/" is the conventional VCS metadata
// directory a codebase checkout sits inside. Matched with doublestar so
// a single pattern covers any depth.
var skipGlobs = []string{
	"**/.history/**",
	"**/.tags/**",
	"**/.git/**",
}

func isSkipped(relSlash string) bool {
	for _, g := range skipGlobs {
		if ok, _ := doublestar.Match(g, relSlash); ok {
			return true
		}
	}
	return false
}

// Export materializes every definition under root (root itself is a
// prefix; pass a zero-length Path to export the whole store) into a
// filesystem layout under dir: one file per definition named
// "<definition>.x", one subdirectory per intermediate namespace segment
// (spec §4.I "export(path, filesystem_dir)"). Only a definition's
// current head version is written; history does not round-trip through
// the bridge.
func Export(reg *symbol.Registry, store *namespace.Store, root namespace.Path, dir string) error {
	for _, def := range store.All() {
		rel, ok := stripPrefix(def.Path, root)
		if !ok || len(rel) == 0 {
			continue
		}
		head := def.Head()
		if head == nil {
			continue
		}

		names := make([]string, len(rel))
		for i, id := range rel {
			name, ok := reg.Name(id)
			if !ok {
				return fmt.Errorf("bridge: export: symbol id %d not present in registry", id)
			}
			names[i] = name
		}

		fileDir := filepath.Join(dir, filepath.Join(names[:len(names)-1]...))
		if err := os.MkdirAll(fileDir, 0o755); err != nil {
			return fmt.Errorf("bridge: export: %w", err)
		}

		text, err := Print(reg, head.AST)
		if err != nil {
			return fmt.Errorf("bridge: export %s: %w", def.Path.String(reg), err)
		}

		filePath := filepath.Join(fileDir, names[len(names)-1]+textExt)
		if err := os.WriteFile(filePath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("bridge: export: write %s: %w", filePath, err)
		}
	}
	return nil
}

// Import walks dir for "*.x" files and commits each as a new version of
// the definition at target plus the file's path relative to dir (spec
// §4.I "import(filesystem_dir, path) ... creating definitions by parsing
// each file; imported definitions are committed as new versions under
// the target path"). author attributes every resulting commit. Returns
// the committed (or unchanged) Version for each file, in the order they
// were visited.
func Import(reg *symbol.Registry, store *namespace.Store, dir string, target namespace.Path, author string) ([]*namespace.Version, error) {
	var versions []*namespace.Version
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("bridge: import: %w", err)
		}
		relSlash := filepath.ToSlash(rel)

		if d.IsDir() {
			if isSkipped(relSlash + "/") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != textExt || isSkipped(relSlash) {
			return nil
		}

		segments := strings.Split(relSlash, "/")
		segments[len(segments)-1] = strings.TrimSuffix(segments[len(segments)-1], textExt)

		full := append(append(namespace.Path(nil), target...), internPath(reg, segments)...)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("bridge: import: %w", err)
		}
		node, err := Parse(reg, string(data))
		if err != nil {
			return fmt.Errorf("bridge: import %s: %w", rel, err)
		}

		v, _, err := store.AutoCommit(full, node, author, "Import "+full.String(reg))
		if err != nil {
			return fmt.Errorf("bridge: import %s: %w", rel, err)
		}
		versions = append(versions, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func internPath(reg *symbol.Registry, segments []string) namespace.Path {
	out := make(namespace.Path, len(segments))
	for i, seg := range segments {
		out[i] = reg.Intern(seg)
	}
	return out
}

// stripPrefix reports whether p begins with prefix and, if so, returns
// the remaining segments.
func stripPrefix(p, prefix namespace.Path) (namespace.Path, bool) {
	if len(prefix) > len(p) {
		return nil, false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return nil, false
		}
	}
	return p[len(prefix):], true
}
