package assets

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hadean/forge/engine/core"
)

// loadSkybox parses a `.haskybox` file naming the cubemap texture asset to
// display, acquires and waits on that texture, and reuses its resolved GPU
// handle directly — a skybox has no GPU identity of its own beyond the
// cubemap it wraps. Grounded on the same `key value` scanner idiom as
// builtin_material.go, since no teacher file handles this format.
func loadSkybox(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	cubemap, err := parseSkyboxFile(m.resolvePath(effectivePath))
	if err != nil {
		return LoadResult{}, err
	}
	if cubemap == InvalidUUID {
		return LoadResult{}, fmt.Errorf("skybox %q: missing cubemap_texture", effectivePath)
	}
	job := m.Acquire(cubemap)
	if !m.WaitLoaded(job) {
		return LoadResult{}, fmt.Errorf("skybox %q: cubemap texture %d failed to load", effectivePath, uint64(cubemap))
	}
	return m.Get(cubemap), nil
}

func unloadSkybox(m *Manager, result LoadResult) {
	_ = result
}

// onImportSkybox registers the cubemap texture as the skybox's implicit
// parent, so Acquire's dependency ordering loads it before the skybox
// itself needs it.
func onImportSkybox(m *Manager, self UUID, path string) error {
	cubemap, err := parseSkyboxFile(m.resolvePath(path))
	if err != nil {
		return err
	}
	if cubemap != InvalidUUID {
		m.setParent(self, cubemap)
	}
	return nil
}

func parseSkyboxFile(path string) (UUID, error) {
	f, err := os.Open(path)
	if err != nil {
		return InvalidUUID, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != "cubemap_texture" {
			core.LogWarn("skybox %q: unknown key %q", path, line)
			continue
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return InvalidUUID, fmt.Errorf("skybox %q: bad cubemap_texture uuid: %w", path, err)
		}
		return UUID(id), nil
	}
	return InvalidUUID, sc.Err()
}
