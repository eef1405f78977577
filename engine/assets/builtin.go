package assets

// registerBuiltinTypes wires the seven asset kinds named in §4.3 init:
// texture, shader, material, static_mesh, model, skybox, scene. Called
// once from Init, before the persisted registry (if any) is loaded, so
// typeByExt is populated before entries get rebuilt.
func registerBuiltinTypes(m *Manager) {
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "texture",
		Extensions: []string{"png", "jpg", "jpeg"},
		Load:       loadTexture,
		Unload:     unloadTexture,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "shader",
		Extensions: []string{"spv"},
		Load:       loadShader,
		Unload:     unloadShader,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "material",
		Extensions: []string{"hamaterial"},
		Load:       loadMaterial,
		Unload:     unloadMaterial,
		OnImport:   onImportMaterial,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "static_mesh",
		Extensions: []string{"hamesh"},
		Load:       loadStaticMesh,
		Unload:     unloadStaticMesh,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "model",
		Extensions: []string{"gltf", "glb"},
		Load:       loadModel,
		Unload:     unloadModel,
		OnImport:   onImportModel,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "skybox",
		Extensions: []string{"haskybox"},
		Load:       loadSkybox,
		Unload:     unloadSkybox,
		OnImport:   onImportSkybox,
	})
	m.registerAssetTypeLocked(TypeDescriptor{
		Name:       "scene",
		Extensions: []string{"hascene"},
		Load:       loadScene,
		Unload:     unloadScene,
		OnImport:   onImportScene,
	})
}
