package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	want := Settings{VSync: false, FramesInFlight: 2, Gamma: 2.0, MSAA: 8, Anisotropy: 4}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	s := Default()
	s.MSAA = 3
	assert.Error(t, s.Validate())

	s = Default()
	s.FramesInFlight = 4
	assert.Error(t, s.Validate())

	s = Default()
	s.Gamma = 3.0
	assert.Error(t, s.Validate())
}

func TestGraphAffectingChanges(t *testing.T) {
	base := Default()
	msaaChange := base
	msaaChange.MSAA = 1
	assert.True(t, GraphAffecting(base, msaaChange))

	gammaChange := base
	gammaChange.Gamma = 2.1
	assert.False(t, GraphAffecting(base, gammaChange))
}

func TestGraphAffectingExcludesAnisotropy(t *testing.T) {
	base := Default()
	anisoChange := base
	anisoChange.Anisotropy = 1
	assert.False(t, GraphAffecting(base, anisoChange))
	assert.True(t, AnisotropyChanged(base, anisoChange))
}

func TestApplyReportsGraphAffecting(t *testing.T) {
	base := Default()
	next := base
	next.FramesInFlight = 2

	affecting, err := Apply(base, next)
	require.NoError(t, err)
	assert.True(t, affecting)

	_, err = Apply(base, Settings{FramesInFlight: 99})
	assert.Error(t, err)
}
