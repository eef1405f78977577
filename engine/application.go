package engine

import (
	"github.com/hadean/forge/engine/core"
)

// ApplicationConfig describes the window, logging, and asset/settings
// paths a Game boots the engine with. Replaces the teacher's
// RenderViewConfigs (a fixed list of view definitions) with the paths
// this engine discovers at runtime instead: the asset root it imports
// from and the TOML settings file §4.9 persists to.
type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel

	// AssetRoot is the directory engine/assets imports from. Defaults to
	// "assets" if empty.
	AssetRoot string
	// SettingsPath is the TOML file engine/settings loads from and saves
	// to. Defaults to "settings.toml" if empty.
	SettingsPath string
	// DefaultScenePath is the `.hascene` file Initialize bootstraps the
	// engine's scene tree from, creating it with defaults if absent (Scn-1).
	// Defaults to "scenes/main.hascene" if empty.
	DefaultScenePath string
}
