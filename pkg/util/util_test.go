package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorf(t *testing.T) {
	errCode := errors.New("code")
	orig := os.ErrNotExist

	err := WrapErrorf(orig, errCode, "reading %s", "levels.json")
	assert.Equal(t, "reading levels.json: file does not exist", err.Error())
	assert.True(t, errors.Is(err, errCode))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, errCode, ErrorCode(err))

	bare := WrapErrorf(nil, ErrBadParamInput, "bad level")
	assert.Equal(t, "bad level", bare.Error())
	assert.True(t, errors.Is(bare, ErrBadParamInput))
	assert.False(t, errors.Is(bare, ErrNotFound))

	assert.Nil(t, ErrorCode(errors.New("plain")))
}

func TestAssertPanic(t *testing.T) {
	assert.NotPanics(t, func() { AssertPanic(true, "fine") })
	assert.PanicsWithValue(t, "broken", func() { AssertPanic(false, "broken") })
}

func TestReadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, ReadConfig(dir))
	assert.Equal(t, "bnb", viper.GetString("ENGINE"))
	assert.Equal(t, 6060, viper.GetInt("API_PORT"))

	viper.Reset()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ENGINE: maxsat\nWORKERS: 2\n"), 0o644))
	require.NoError(t, ReadConfig(dir))
	assert.Equal(t, "maxsat", viper.GetString("ENGINE"))
	assert.Equal(t, 2, viper.GetInt("WORKERS"))

	viper.Reset()
	t.Setenv("MULTICUT_TIME_LIMIT", "7s")
	require.NoError(t, ReadConfig(dir))
	assert.Equal(t, "7s", viper.GetDuration("TIME_LIMIT").String())
}
