package assets

import "github.com/hadean/forge/engine/handle"

// State is the asset's lifecycle stage (§3 Asset Registry Entry).
type State int

const (
	StateUnloaded State = iota
	StatePending
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// JobHandle identifies the most recent load job for an asset. It reuses
// handle.Handle's (index, generation) shape even though the backing store
// here is the job table rather than a GPU resource pool, for the same
// stale-reference-detection reason §4.1 gives handles in general.
type JobHandle = handle.Handle

// InvalidJob is the "no job" sentinel (mirrors handle.InvalidIndex).
var InvalidJob = JobHandle{Index: handle.InvalidIndex}

// LoadResult is the opaque success/failure record produced by a type's
// load_fn. Handle is the typed (index, generation) pair into whatever
// resource pool the asset's kind resolves to (e.g. a Texture pool handle)
// — the asset manager never interprets it, only stores and returns it
// (§3 Asset Cache Entry).
type LoadResult struct {
	OK     bool
	Handle handle.Handle
	Err    error
}

// TypeDescriptor is a registered asset type (§3 Asset Type Descriptor).
type TypeDescriptor struct {
	Name       string
	Extensions []string

	// Load runs on a worker thread (engine/assets job.go). effectivePath is
	// the real file to read from disk; for embedded assets it is the
	// parent's path, and embed carries the sub-resource parameters.
	Load func(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error)

	// Unload releases whatever resources Load produced.
	Unload func(m *Manager, result LoadResult)

	// OnImport runs once, synchronously, the first time the asset is
	// imported. It may call m.importEmbedded to register children.
	OnImport func(m *Manager, self UUID, path string) error
}

// EmbedParams carries the sub-resource identity for an embedded asset
// (§6 Embedded asset URI scheme): `@<parent_uuid>-<data_id>/<name>.<ext>`.
type EmbedParams struct {
	ParentUUID    UUID
	DataID        uint64
	Name          string
	TypeInfoIndex int
}

// Entry is one row of the asset registry (§3 Asset Registry Entry).
type Entry struct {
	UUID          UUID
	Path          string
	TypeInfoIndex int
	Parent        UUID
	RefCount      uint64
	State         State
	Job           JobHandle
	Result        LoadResult
}
