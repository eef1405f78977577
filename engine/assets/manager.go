// Package assets implements the engine's asset registry: UUID-keyed
// entries, async load jobs dispatched through engine/assets' own worker
// pool, parent/embedded relationships, and textual persistence (§4.3).
//
// Grounded on the teacher's engine/assets/assets.go (fsnotify watcher,
// Loader interface, registerLoader table) and engine/systems/texture.go's
// reference-counting idiom (ProcessTextureReference), generalized from
// "one system per asset kind" to a single registry keyed by a dynamic
// type table, per §3's Asset Type Descriptor.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kamstrup/intmap"

	"github.com/hadean/forge/engine/core"
)

// Manager is the engine-wide asset registry singleton, encapsulated behind
// a context value per §9 Design Notes ("Global mutable state ... context
// value passed explicitly; internally it owns its mutex").
type Manager struct {
	mu sync.Mutex

	root        string
	initialized bool

	types      []TypeDescriptor
	typeByName map[string]int
	typeByExt  map[string]int // lower-case extension (no dot) -> type index

	entries  *intmap.Map[uint64, *Entry]
	byPath   map[string]UUID
	embedded *intmap.Map[uint64, []UUID] // parent UUID -> ordered child UUIDs

	jobs *jobSystem
	gpu  GPUBackend

	watcher  *fsnotify.Watcher
	watchDir chan struct{}
}

const registryFileName = "asset_registry.haregistry"

// New constructs an unstarted Manager. Call Init to bind it to an asset
// root directory.
func New() *Manager {
	return &Manager{
		typeByName: make(map[string]int),
		typeByExt:  make(map[string]int),
		entries:    intmap.New[uint64, *Entry](256),
		byPath:     make(map[string]UUID),
		embedded:   intmap.New[uint64, []UUID](64),
		jobs:       newJobSystem(4, 256),
	}
}

// Init binds the manager to assetRoot, registers the built-in asset types,
// and loads the persisted registry if present (§4.3 init).
func (m *Manager) Init(assetRoot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return core.ErrAlreadyInitialized
	}
	if st, err := os.Stat(assetRoot); err != nil || !st.IsDir() {
		return fmt.Errorf("assets: init: %w: %s", core.ErrAssetNotFound, assetRoot)
	}
	m.root = assetRoot

	registerBuiltinTypes(m)

	if err := m.loadRegistryLocked(); err != nil {
		core.LogWarn("assets: no persisted registry loaded: %s", err.Error())
	}

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		m.watcher = watcher
		m.watchDir = make(chan struct{})
		_ = watcher.Add(assetRoot)
		go m.watchLoop()
	} else {
		core.LogWarn("assets: fsnotify unavailable, hot-reload disabled: %s", err.Error())
	}

	m.initialized = true
	return nil
}

// Deinit persists the registry and unloads every still-loaded asset via
// its unload_fn (§4.3 deinit).
func (m *Manager) Deinit() error {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return core.ErrNotInitialized
	}
	if m.watcher != nil {
		close(m.watchDir)
		_ = m.watcher.Close()
	}

	var toUnload []*Entry
	for _, k := range m.entries.Keys() {
		if e, ok := m.entries.Get(k); ok && e.State == StateLoaded {
			toUnload = append(toUnload, e)
		}
	}
	m.mu.Unlock()

	for _, e := range toUnload {
		td := m.types[e.TypeInfoIndex]
		if td.Unload != nil {
			td.Unload(m, e.Result)
		}
		m.mu.Lock()
		e.State = StateUnloaded
		m.mu.Unlock()
	}

	if err := m.saveRegistry(); err != nil {
		return err
	}

	m.jobs.shutdown()

	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()
	return nil
}

// RegisterAssetType adds a new asset type descriptor. Duplicate names are
// rejected (§4.3 register_asset).
func (m *Manager) RegisterAssetType(td TypeDescriptor) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerAssetTypeLocked(td)
}

func (m *Manager) registerAssetTypeLocked(td TypeDescriptor) bool {
	if _, exists := m.typeByName[td.Name]; exists {
		core.LogError("assets: type %q already registered", td.Name)
		return false
	}
	idx := len(m.types)
	m.types = append(m.types, td)
	m.typeByName[td.Name] = idx
	for _, ext := range td.Extensions {
		m.typeByExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = idx
	}
	return true
}

// canonicalize lower-cases and forward-slashes a path, per §3 Asset
// Registry Entry. Embedded synthetic paths pass through unchanged aside
// from slash normalization, since their UUID component must stay numeric.
func canonicalize(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	if isEmbeddedPath(p) {
		return p
	}
	return strings.ToLower(p)
}

// resolvePath joins a registry-relative path against the asset root. Every
// load_fn receives a relative effectivePath and must call this before
// touching the filesystem.
func (m *Manager) resolvePath(relPath string) string {
	m.mu.Lock()
	root := m.root
	m.mu.Unlock()
	return filepath.Join(root, relPath)
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ImportAsset canonicalizes path, reuses an existing handle if already
// imported, otherwise validates, assigns a UUID, inserts an Unloaded entry,
// and invokes on_import_fn (§4.3 import_asset, §8 property 1).
func (m *Manager) ImportAsset(path string) (UUID, error) {
	if path == "" {
		return InvalidUUID, fmt.Errorf("assets: import: %w: empty path", core.ErrAssetNotFound)
	}
	canon := canonicalize(path)

	m.mu.Lock()
	if existing, ok := m.byPath[canon]; ok {
		m.mu.Unlock()
		return existing, nil
	}

	parentUUID, dataID, embedName, isEmbedded := parseEmbeddedURI(canon)
	var typeIdx int
	var ok bool

	if isEmbedded {
		if _, exists := m.entries.Get(uint64(parentUUID)); !exists {
			m.mu.Unlock()
			return InvalidUUID, fmt.Errorf("assets: import embedded %q: %w", canon, core.ErrMissingParent)
		}
		typeIdx, ok = m.typeByExt[extOf(embedName)]
		if !ok {
			m.mu.Unlock()
			return InvalidUUID, fmt.Errorf("assets: import %q: %w", canon, core.ErrUnknownExtension)
		}
	} else {
		full := filepath.Join(m.root, canon)
		if _, err := os.Stat(full); err != nil {
			m.mu.Unlock()
			return InvalidUUID, fmt.Errorf("assets: import %q: %w", canon, core.ErrAssetNotFound)
		}
		typeIdx, ok = m.typeByExt[extOf(canon)]
		if !ok {
			m.mu.Unlock()
			return InvalidUUID, fmt.Errorf("assets: import %q: %w", canon, core.ErrUnknownExtension)
		}
	}

	id := NewUUID()
	entry := &Entry{
		UUID:          id,
		Path:          canon,
		TypeInfoIndex: typeIdx,
		State:         StateUnloaded,
		Job:           InvalidJob,
	}
	if isEmbedded {
		entry.Parent = parentUUID
	}
	m.entries.Put(uint64(id), entry)
	m.byPath[canon] = id
	if isEmbedded {
		children, _ := m.embedded.Get(uint64(parentUUID))
		m.embedded.Put(uint64(parentUUID), append(children, id))
	}
	_ = dataID

	onImport := m.types[typeIdx].OnImport
	m.mu.Unlock()

	if onImport != nil {
		if err := onImport(m, id, canon); err != nil {
			core.LogError("assets: on_import for %q failed: %s", canon, err.Error())
		}
	}
	return id, nil
}

// ImportDirectory walks dir (relative to the asset root) importing every
// file whose extension is registered. Per-file failures are aggregated
// rather than aborting the batch (§7 failure model, §12 supplement).
func (m *Manager) ImportDirectory(dir string) ([]UUID, []error) {
	var ids []UUID
	var errs []error

	full := filepath.Join(m.root, dir)
	_ = filepath.Walk(full, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(m.root, walkPath)
		if relErr != nil {
			errs = append(errs, relErr)
			return nil
		}
		id, impErr := m.ImportAsset(rel)
		if impErr != nil {
			if !errors.Is(impErr, core.ErrUnknownExtension) {
				errs = append(errs, fmt.Errorf("%s: %w", rel, impErr))
			}
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	return ids, errs
}

// importEmbedded is the helper an OnImport callback uses to register a
// child asset living inside the parent's file.
func (m *Manager) importEmbedded(parent UUID, dataID uint64, nameWithExt string) (UUID, error) {
	return m.ImportAsset(embeddedURI(parent, dataID, nameWithExt))
}

// IsValid reports whether id names a known registry entry.
func (m *Manager) IsValid(id UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries.Get(uint64(id))
	return ok
}

// IsLoaded reports whether id's asset is currently Loaded.
func (m *Manager) IsLoaded(id UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries.Get(uint64(id))
	return ok && e.State == StateLoaded
}

// IsEmbeddedPath reports whether path uses the embedded URI scheme.
func (m *Manager) IsEmbeddedPath(path string) bool {
	return isEmbeddedPath(canonicalize(path))
}

// IsEmbedded reports whether id's registry entry has a non-zero parent.
func (m *Manager) IsEmbedded(id UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries.Get(uint64(id))
	return ok && e.Parent != InvalidUUID
}

// GetEmbeddedAssets returns the ordered children registered under parent.
func (m *Manager) GetEmbeddedAssets(parent UUID) []UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	children, _ := m.embedded.Get(uint64(parent))
	out := make([]UUID, len(children))
	copy(out, children)
	return out
}

// Get returns the cached load result for id. Asserts that the asset is
// Loaded (§4.3 get), per §7's "invariant violation" handling for misuse.
func (m *Manager) Get(id UUID) LoadResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries.Get(uint64(id))
	core.Assert(ok, "assets.Manager.Get: unknown asset %d", uint64(id))
	core.Assert(e.State == StateLoaded, "assets.Manager.Get: asset %d is not loaded (state=%s)", uint64(id), e.State)
	return e.Result
}

// setParent records an implicit parent relationship discovered during
// OnImport (e.g. a model's opaque_pbr shader) that isn't expressed through
// the embedded URI scheme.
func (m *Manager) setParent(id, parent UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entryLocked(id).Parent = parent
}

// parentOf returns id's registered parent, or InvalidUUID if none.
func (m *Manager) parentOf(id UUID) UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries.Get(uint64(id))
	if !ok {
		return InvalidUUID
	}
	return e.Parent
}

// entryLocked fetches e, asserting id is known. Caller holds m.mu.
func (m *Manager) entryLocked(id UUID) *Entry {
	e, ok := m.entries.Get(uint64(id))
	core.Assert(ok, "assets: unknown handle %d passed to a registry operation", uint64(id))
	return e
}
