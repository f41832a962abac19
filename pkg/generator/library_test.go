package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/groupgen/pkg/group"
)

var noop = Func(func(context.Context, GenerationContext, group.Reader) ([]group.GroupWithData, error) {
	return nil, nil
})

func TestNewLibraryKeepsRegistrationOrder(t *testing.T) {
	lib, err := NewLibrary(
		Definition{Name: "c", Generator: noop},
		Definition{Name: "a", DependsOn: []string{"c"}, Generator: noop},
		Definition{Name: "b", Generator: noop},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, lib.Names())
	assert.Equal(t, 3, lib.Len())

	def, ok := lib.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, def.DependsOn)
}

func TestNewLibraryRejectsInvalidDefinitions(t *testing.T) {
	_, err := NewLibrary(Definition{Name: "a", Generator: noop}, Definition{Name: "a", Generator: noop})
	assert.True(t, errors.Is(err, ErrDuplicateGenerator))

	_, err = NewLibrary(Definition{Name: "a", DependsOn: []string{"ghost"}, Generator: noop})
	assert.True(t, errors.Is(err, ErrMissingDependency))

	_, err = NewLibrary(Definition{Name: "a"})
	assert.Error(t, err)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Daily ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyDaily, f)

	_, err = ParseFrequency("hourly")
	assert.Error(t, err)
}
