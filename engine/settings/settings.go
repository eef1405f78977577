// Package settings holds the runtime-mutable engine settings (§4.9):
// VSync, frame-in-flight count, gamma, MSAA, and anisotropy, persisted as
// TOML. Grounded on the teacher's go.mod dependency on
// github.com/pelletier/go-toml/v2, which the copied repo carried but
// never exercised — this package is that dependency's first caller.
package settings

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hadean/forge/engine/core"
)

// Settings mirrors §4.9's runtime-mutable set and the defaults table in
// §6.
type Settings struct {
	VSync          bool    `toml:"vsync"`
	FramesInFlight int     `toml:"frames_in_flight"`
	Gamma          float32 `toml:"gamma"`
	MSAA           int     `toml:"msaa"`
	Anisotropy     int     `toml:"anisotropy"`
}

// Default returns the §6 defaults table's settings subset.
func Default() Settings {
	return Settings{
		VSync:          true,
		FramesInFlight: 3,
		Gamma:          2.2,
		MSAA:           4,
		Anisotropy:     16,
	}
}

var validFramesInFlight = map[int]bool{2: true, 3: true}
var validMSAA = map[int]bool{1: true, 2: true, 4: true, 8: true}
var validAnisotropy = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// Validate rejects out-of-range values per §4.9's enumerated domains.
func (s Settings) Validate() error {
	if !validFramesInFlight[s.FramesInFlight] {
		return fmt.Errorf("settings: frames_in_flight must be 2 or 3, got %d", s.FramesInFlight)
	}
	if s.Gamma < 2.0 || s.Gamma > 2.4 {
		return fmt.Errorf("settings: gamma must be in [2.0, 2.4], got %v", s.Gamma)
	}
	if !validMSAA[s.MSAA] {
		return fmt.Errorf("settings: msaa must be one of 1,2,4,8, got %d", s.MSAA)
	}
	if !validAnisotropy[s.Anisotropy] {
		return fmt.Errorf("settings: anisotropy must be one of 1,2,4,8,16, got %d", s.Anisotropy)
	}
	return nil
}

// Load reads and validates a TOML settings file, falling back to
// Default() if path does not exist.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save persists s as TOML.
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// GraphAffecting reports whether changing from s to next requires
// wait_gpu → recompile/invalidate per §4.9 ("Changes that affect the
// graph (MSAA, triple buffering) trigger wait_gpu → recompile/invalidate
// graph"). Anisotropy deliberately is not included here: it takes the
// separate sampler-recreate + bind-group-reupdate path (respool.Manager
// .SetAnisotropy), not a graph recompile — see AnisotropyChanged.
func GraphAffecting(s, next Settings) bool {
	return s.MSAA != next.MSAA || s.FramesInFlight != next.FramesInFlight
}

// AnisotropyChanged reports whether s to next requires recreating the
// default sampler (§4.9, sampler-identity Open Question).
func AnisotropyChanged(s, next Settings) bool {
	return s.Anisotropy != next.Anisotropy
}

// Apply validates next and logs which settings changed, returning
// whether the change requires a graph recompile. Callers (the engine's
// main loop) are responsible for the actual wait_gpu and
// rendergraph.Graph.Invalidate/Compile call.
func Apply(current Settings, next Settings) (graphAffecting bool, err error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	if current == next {
		return false, nil
	}
	core.LogInfo("settings: applying change %+v -> %+v", current, next)
	return GraphAffecting(current, next), nil
}
