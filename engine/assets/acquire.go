package assets

import "github.com/hadean/forge/engine/core"

// Acquire transitions an Unloaded asset to Pending and enqueues its load
// job (recursively acquiring its parent first, if any), or — if the asset
// is already Pending/Loaded — increments its ref_count (§4.3 acquire,
// §5 ordering guarantees, §8 property 2).
//
// Per the Open Question decision recorded in SPEC_FULL.md: a second caller
// acquiring a still-Pending asset always gets back the *original* job
// handle, never a fresh one, until the asset reaches Loaded.
func (m *Manager) Acquire(id UUID) JobHandle {
	m.mu.Lock()
	e := m.entryLocked(id)

	switch e.State {
	case StatePending, StateLoaded:
		e.RefCount++
		job := e.Job
		m.mu.Unlock()
		return job

	case StateFailed, StateUnloaded:
		e.State = StatePending
		e.RefCount++
		typeIdx := e.TypeInfoIndex
		path := e.Path
		parent := e.Parent
		oldJob := e.Job
		m.mu.Unlock()

		var depJob JobHandle = InvalidJob
		if parent != InvalidUUID {
			depJob = m.Acquire(parent)
		}

		job := m.enqueueLoad(id, typeIdx, path, depJob)

		m.mu.Lock()
		e.Job = job
		m.mu.Unlock()

		// e can only reach Failed/Unloaded after its previous job ran to
		// completion (either the load itself set StateUnloaded, or
		// Release dropped ref_count to zero on a Loaded entry), so the
		// old job handle is always safe to free here — this is what
		// keeps repeated acquire/release cycles of the same asset from
		// exhausting the job pool.
		m.jobs.release(oldJob)
		return job
	}

	m.mu.Unlock()
	core.Assert(false, "assets.Manager.Acquire: unreachable state for asset %d", uint64(id))
	return InvalidJob
}

// enqueueLoad submits the type's load_fn to the job system, resolving the
// effective path for embedded assets to their parent's file plus embed
// params (§4.3 "Load job behavior", step 1), and publishes the resulting
// state transition once it completes.
func (m *Manager) enqueueLoad(id UUID, typeIdx int, path string, dep JobHandle) JobHandle {
	td := m.types[typeIdx]

	parentUUID, dataID, name, isEmbedded := parseEmbeddedURI(path)
	var embed *EmbedParams
	effectivePath := path
	if isEmbedded {
		embed = &EmbedParams{ParentUUID: parentUUID, DataID: dataID, Name: name, TypeInfoIndex: typeIdx}
		m.mu.Lock()
		if parentEntry, ok := m.entries.Get(uint64(parentUUID)); ok {
			effectivePath = parentEntry.Path
		}
		m.mu.Unlock()
	}

	return m.jobs.submit(dep, func() LoadResult {
		result, err := td.Load(m, effectivePath, embed)
		m.mu.Lock()
		e := m.entryLocked(id)
		if err != nil || !result.OK {
			// Matches §4.3 step 2 exactly ("on failure, set state back to
			// Unloaded"): ref_count is left untouched since the caller(s)
			// that incremented it still owe a matching Release, and rolling
			// it back here would underflow that later call. This transiently
			// puts a ref'd entry in Unloaded rather than {Pending, Loaded}
			// until Release runs — accepted per spec, not rolled back.
			e.State = StateUnloaded
			m.mu.Unlock()
			core.LogError("assets: load failed for %q: %v", path, err)
			return LoadResult{OK: false, Err: err}
		}
		e.Result = result
		e.State = StateLoaded
		m.mu.Unlock()
		return result
	})
}

// Release decrements ref_count; when it reaches zero on a Loaded entry the
// type's unload_fn runs and the entry returns to Unloaded (§4.3 release,
// §8 properties 4 and 6).
func (m *Manager) Release(id UUID) {
	m.mu.Lock()
	e := m.entryLocked(id)
	core.Assert(e.RefCount > 0, "assets.Manager.Release: ref_count underflow for asset %d", uint64(id))

	e.RefCount--
	if e.RefCount > 0 {
		m.mu.Unlock()
		return
	}

	if e.State != StateLoaded {
		m.mu.Unlock()
		return
	}
	result := e.Result
	typeIdx := e.TypeInfoIndex
	e.State = StateUnloaded
	e.Result = LoadResult{}
	m.mu.Unlock()

	if unload := m.types[typeIdx].Unload; unload != nil {
		unload(m, result)
	}
}

// WaitLoaded blocks until job completes and reports whether the asset
// reached Loaded.
func (m *Manager) WaitLoaded(job JobHandle) bool {
	return m.jobs.wait(job).OK
}
