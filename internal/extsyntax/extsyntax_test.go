package extsyntax

import (
	"testing"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `package sample

const Answer = 42

var greeting = "hi"

func Add(x int, y int) int {
	return x + y
}
`

func TestParseGoLiftsTopLevelDeclarations(t *testing.T) {
	reg := symbol.New()
	unit, err := ParseGo(reg, []byte(sampleSource))
	require.NoError(t, err)
	require.Equal(t, ast.KindCompilationUnit, unit.Kind())

	byName := make(map[string]*ast.Node)
	for _, def := range unit.Children() {
		name, ok := ast.SymbolOf(def)
		require.True(t, ok)
		n, ok := reg.Name(name)
		require.True(t, ok)
		byName[n] = def
	}

	require.Contains(t, byName, "Answer")
	require.Contains(t, byName, "greeting")
	require.Contains(t, byName, "Add")

	answer := byName["Answer"]
	assert.Equal(t, ast.VisibilityPublic, answer.Payload().(ast.ValueDefPayload).Visibility)
	lit := answer.Child(0)
	assert.Equal(t, ast.KindLiteralInt, lit.Kind())
	assert.Equal(t, int64(42), lit.Payload().(ast.LiteralIntPayload).Value)

	greet := byName["greeting"]
	assert.Equal(t, ast.VisibilityPrivate, greet.Payload().(ast.ValueDefPayload).Visibility)
	assert.Equal(t, "hi", greet.Child(0).Payload().(ast.LiteralTextPayload).Value)

	add := byName["Add"]
	lambda := add.Child(0)
	require.Equal(t, ast.KindLambda, lambda.Kind())
	// two parameters + body
	assert.Len(t, lambda.Children(), 3)

	style, ok := add.Annotations().Get(StyleAnnotation)
	require.True(t, ok)
	assert.Equal(t, "func", style.Text)
}

func TestParseGoSkipsMultiNameDeclarations(t *testing.T) {
	reg := symbol.New()
	unit, err := ParseGo(reg, []byte("package sample\n\nconst a, b = 1, 2\n"))
	require.NoError(t, err)
	assert.Empty(t, unit.Children())
}
