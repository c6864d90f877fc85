package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/namespace"
)

// Codec converts between an in-memory AST and the canonical textual form
// a VersionRow persists (internal/bridge's per-definition printer), so
// this package never needs to know how to render or parse source text
// itself — only how to shuttle the resulting string to and from a row.
type Codec struct {
	Encode func(*ast.Node) (string, error)
	Decode func(string) (*ast.Node, error)
}

// Save persists every definition currently in s, including its full
// version history and tag table, overwriting whatever previously existed
// under the same path. The whole write runs in one transaction since a
// definition's rows must land together or not at all.
func Save(ctx context.Context, db *gorm.DB, s *namespace.Store, codec Codec) error {
	reg := s.Registry()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range s.All() {
			pathStr := def.Path.String(reg)

			var row DefinitionRow
			err := tx.Where("path = ?", pathStr).First(&row).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				row = DefinitionRow{ID: uuid.NewString(), Path: pathStr, Name: reg.MustName(def.Name)}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("storage: save definition %s: %w", pathStr, err)
				}
			case err != nil:
				return fmt.Errorf("storage: load definition %s: %w", pathStr, err)
			}

			if err := tx.Where("definition_id = ?", row.ID).Delete(&VersionRow{}).Error; err != nil {
				return fmt.Errorf("storage: clear versions for %s: %w", pathStr, err)
			}
			for seq, v := range def.History {
				source, err := codec.Encode(v.AST)
				if err != nil {
					return fmt.Errorf("storage: encode %s version %d: %w", pathStr, seq, err)
				}
				deps, err := json.Marshal(hexDeps(v.Deps))
				if err != nil {
					return fmt.Errorf("storage: encode %s deps: %w", pathStr, err)
				}
				vr := VersionRow{
					ID:           uuid.NewString(),
					DefinitionID: row.ID,
					Hash:         hexDigest(v.Hash),
					Timestamp:    v.Timestamp,
					Author:       v.Author,
					Message:      v.Message,
					Source:       source,
					Deps:         deps,
					Sequence:     seq,
				}
				if err := tx.Create(&vr).Error; err != nil {
					return fmt.Errorf("storage: save %s version %d: %w", pathStr, seq, err)
				}
			}

			if err := tx.Where("definition_id = ?", row.ID).Delete(&TagRow{}).Error; err != nil {
				return fmt.Errorf("storage: clear tags for %s: %w", pathStr, err)
			}
			for label, h := range s.TagsOf(def.Path) {
				tr := TagRow{
					ID:           uuid.NewString(),
					DefinitionID: row.ID,
					Label:        label,
					Hash:         hexDigest(h),
					Immutable:    s.IsImmutableTag(def.Path, label),
				}
				if err := tx.Create(&tr).Error; err != nil {
					return fmt.Errorf("storage: save tag %s@%s: %w", pathStr, label, err)
				}
			}
		}
		return nil
	})
}

// Load reconstructs a Store from its persisted rows, replaying each
// definition's version history through AutoCommit (so the Dependency
// Index rebuilds exactly as it would from a live edit session) and then
// re-applying its tags.
func Load(ctx context.Context, db *gorm.DB, s *namespace.Store, codec Codec) error {
	reg := s.Registry()
	var rows []DefinitionRow
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("storage: load definitions: %w", err)
	}

	for _, row := range rows {
		path, err := namespace.ParsePath(reg, row.Path)
		if err != nil {
			return fmt.Errorf("storage: load definition %s: %w", row.Path, err)
		}

		var versions []VersionRow
		if err := db.WithContext(ctx).Where("definition_id = ?", row.ID).Order("sequence asc").Find(&versions).Error; err != nil {
			return fmt.Errorf("storage: load versions for %s: %w", row.Path, err)
		}
		for _, v := range versions {
			root, err := codec.Decode(v.Source)
			if err != nil {
				return fmt.Errorf("storage: decode %s version %d: %w", row.Path, v.Sequence, err)
			}
			if _, _, err := s.AutoCommit(path, root, v.Author, v.Message); err != nil {
				return fmt.Errorf("storage: replay %s version %d: %w", row.Path, v.Sequence, err)
			}
		}

		var tags []TagRow
		if err := db.WithContext(ctx).Where("definition_id = ?", row.ID).Find(&tags).Error; err != nil {
			return fmt.Errorf("storage: load tags for %s: %w", row.Path, err)
		}
		for _, t := range tags {
			h, err := parseDigest(t.Hash)
			if err != nil {
				return fmt.Errorf("storage: replay tag %s@%s: %w", row.Path, t.Label, err)
			}
			s.RestoreTag(path, t.Label, h, t.Immutable)
		}
	}
	return nil
}

func hexDigest(d ast.Digest) string {
	return fmt.Sprintf("%x", d[:])
}

func parseDigest(s string) (ast.Digest, error) {
	var d ast.Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid hex digest %q: %w", s, err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("digest %q has %d bytes, want %d", s, len(b), len(d))
	}
	copy(d[:], b)
	return d, nil
}

func hexDeps(deps map[ast.Digest]bool) []string {
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, hexDigest(d))
	}
	return out
}
