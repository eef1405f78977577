//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Shaders compiles assets/shaders/opaque_pbr.vert and opaque_pbr.frag with
// glslc into opaque_pbr.vert.spv and opaque_pbr.frag.spv. Other sources are
// not compiled, and the asset manager's shaders/opaque_pbr.spv is not
// written by this target.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	if _, err := executeCmd("glslc", withArgs("assets/shaders/opaque_pbr.vert", "-o", "assets/shaders/opaque_pbr.vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("assets/shaders/opaque_pbr.frag", "-o", "assets/shaders/opaque_pbr.frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}
