package engine

import (
	"github.com/hadean/forge/engine/assets"
	"github.com/hadean/forge/engine/handle"
)

// assetResolver implements scene.AssetResolver over the live asset
// manager: a scene node's StaticMeshUUID/MaterialOverrides are asset
// UUIDs, and parse_scene needs to know whether each has reached Loaded
// and, if so, its resolved respool handle (§4.5 parse_scene).
type assetResolver struct {
	assets *assets.Manager
}

func newAssetResolver(m *assets.Manager) *assetResolver {
	return &assetResolver{assets: m}
}

func (r *assetResolver) IsLoaded(uuid uint64) bool {
	return r.assets.IsLoaded(assets.UUID(uuid))
}

func (r *assetResolver) ResolveStaticMesh(uuid uint64) (handle.Handle, bool) {
	return r.resolve(uuid)
}

func (r *assetResolver) ResolveMaterial(uuid uint64) (handle.Handle, bool) {
	return r.resolve(uuid)
}

func (r *assetResolver) resolve(uuid uint64) (handle.Handle, bool) {
	if !r.assets.IsLoaded(assets.UUID(uuid)) {
		return handle.Invalid(), false
	}
	result := r.assets.Get(assets.UUID(uuid))
	return result.Handle, result.OK
}
