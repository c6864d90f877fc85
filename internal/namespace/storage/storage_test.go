package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/diag"
	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/namespace"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

func TestConnectMemoryDatabaseRunsMigrations(t *testing.T) {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&DefinitionRow{}))
	assert.True(t, db.Migrator().HasTable(&VersionRow{}))
	assert.True(t, db.Migrator().HasTable(&TagRow{}))
}

// stringCodec is a minimal Codec stand-in for tests that does not depend
// on internal/bridge: it encodes a LiteralInt ValueDef as a decimal
// string and decodes it back, enough to exercise Save/Load round-tripping
// without needing the full textual printer.
func stringCodec(reg *symbol.Registry) Codec {
	return Codec{
		Encode: func(n *ast.Node) (string, error) {
			def := n.Payload().(ast.ValueDefPayload)
			lit := n.Child(0).Payload().(ast.LiteralIntPayload)
			return reg.MustName(def.Name) + "=" + itoa(lit.Value), nil
		},
		Decode: func(s string) (*ast.Node, error) {
			name, numStr := splitOnEquals(s)
			b := ast.NewBuilder()
			lit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: atoi(numStr)})
			return b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern(name)}, lit), nil
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)
	ctx := context.Background()

	reg := symbol.New()
	s := namespace.New(reg, hash.New(reg))
	codec := stringCodec(reg)

	path, err := namespace.ParsePath(reg, "Math.answer")
	require.NoError(t, err)

	b := ast.NewBuilder()
	lit := b.Build(diag.Span{}, ast.KindLiteralInt, ast.LiteralIntPayload{Value: 42})
	def := b.Build(diag.Span{}, ast.KindValueDef, ast.ValueDefPayload{Name: reg.Intern("answer")}, lit)
	_, _, err = s.AutoCommit(path, def, "ada", "initial")
	require.NoError(t, err)
	require.NoError(t, s.Tag(path, "1.0.0"))

	require.NoError(t, Save(ctx, db, s, codec))

	restored := namespace.New(reg, hash.New(reg))
	require.NoError(t, Load(ctx, db, restored, codec))

	got, ok := restored.Definition(path)
	require.True(t, ok)
	require.Len(t, got.History, 1)
	assert.Equal(t, "ada", got.History[0].Author)

	h, err := restored.ResolveTag(path, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, got.History[0].Hash, h)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func atoi(s string) int64 {
	var n int64
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func splitOnEquals(s string) (string, string) {
	for i, c := range s {
		if c == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
