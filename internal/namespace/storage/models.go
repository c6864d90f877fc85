// Package storage provides GORM-backed persistence for the Namespace
// Store: definitions, their append-only version history, and SemVer
// tags survive a process restart.
package storage

import (
	"time"

	"gorm.io/datatypes"
)

// DefinitionRow is one path-addressed definition (namespace.Definition
// without its in-memory *ast.Node payload — the AST itself round-trips
// through internal/bridge's textual form, not through this table).
type DefinitionRow struct {
	ID   string `gorm:"primaryKey;type:varchar(36)"`
	Path string `gorm:"type:varchar(512);uniqueIndex;not null"` // dotted path, e.g. "Math.add"
	Name string `gorm:"type:varchar(255);not null"`
}

// VersionRow is one committed revision of a DefinitionRow.
type VersionRow struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	DefinitionID string `gorm:"type:varchar(36);index;not null"`

	Hash      string    `gorm:"type:varchar(64);not null;index"` // hex SHA-256
	Timestamp time.Time `gorm:"index"`
	Author    string    `gorm:"type:varchar(255)"`
	Message   string    `gorm:"type:text"`

	// Source is the canonical textual form (internal/bridge) of the
	// committed AST, so a restored Store can re-lift it without needing
	// the in-process *ast.Node that produced Hash.
	Source string `gorm:"type:text"`

	// Deps is the set of dependency hashes recorded at commit time,
	// serialized as a JSON array of hex strings (spec §4.G: "each Version
	// records the definition hashes it directly depends on").
	Deps datatypes.JSON `gorm:"type:jsonb"`

	// Sequence preserves history order independent of Timestamp
	// resolution/clock skew — append-only, assigned at insert time.
	Sequence int `gorm:"not null"`
}

// TagRow is a SemVer label pointing at one VersionRow's hash; Immutable
// records whether it was set through Store.TagImmutable.
type TagRow struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	DefinitionID string `gorm:"type:varchar(36);index;not null"`
	Label        string `gorm:"type:varchar(64);not null"`
	Hash         string `gorm:"type:varchar(64);not null"`
	Immutable    bool   `gorm:"default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DefinitionRow) TableName() string { return "namespace_definitions" }
func (VersionRow) TableName() string    { return "namespace_versions" }
func (TagRow) TableName() string        { return "namespace_tags" }
