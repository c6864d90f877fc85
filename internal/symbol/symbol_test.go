package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ribbonlang/ribbon/internal/symbol"
)

func TestInternIsStableAndDeduplicates(t *testing.T) {
	r := symbol.New()

	a := r.Intern("Core.List.map")
	b := r.Intern("Core.List.map")
	c := r.Intern("Core.List.filter")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	name, ok := r.Name(a)
	require.True(t, ok)
	require.Equal(t, "Core.List.map", name)
}

func TestZeroIDIsReservedInvalid(t *testing.T) {
	r := symbol.New()
	_, ok := r.Name(0)
	require.False(t, ok)
}

func TestConcurrentIntern(t *testing.T) {
	r := symbol.New()
	const n = 200
	done := make(chan symbol.ID, n)
	for i := 0; i < n; i++ {
		go func() {
			done <- r.Intern("shared")
		}()
	}
	first := <-done
	for i := 1; i < n; i++ {
		require.Equal(t, first, <-done)
	}
}
