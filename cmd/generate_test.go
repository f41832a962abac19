package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw33tLie/groupgen/pkg/group"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addGenerationFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestGenerationOptions(t *testing.T) {
	opts, err := generationOptions(newFlagCmd(t,
		"--timestamp", "1700000000",
		"--additional-data", "0x38D6a9cA9F8E4Bd7a0a46d0F9f9Bc0C5e3A07C0b=5,0x1111111111111111111111111111111111111111",
		"--first-generation-only",
	))
	require.NoError(t, err)
	require.NotNil(t, opts.Timestamp)
	assert.Equal(t, int64(1700000000), *opts.Timestamp)
	assert.True(t, opts.FirstGenerationOnly)
	assert.Equal(t, group.FetchedData{
		"0x38D6a9cA9F8E4Bd7a0a46d0F9f9Bc0C5e3A07C0b": "5",
		"0x1111111111111111111111111111111111111111": "1",
	}, opts.AdditionalData)
}

func TestGenerationOptionsDefaults(t *testing.T) {
	opts, err := generationOptions(newFlagCmd(t))
	require.NoError(t, err)
	assert.Nil(t, opts.Timestamp)
	assert.Nil(t, opts.AdditionalData)
	assert.False(t, opts.FirstGenerationOnly)
}

func TestGenerationOptionsRejectsBadAdditionalData(t *testing.T) {
	_, err := generationOptions(newFlagCmd(t, "--additional-data", "notanaddress=1"))
	assert.ErrorIs(t, err, group.ErrNotAnAddress)
}
