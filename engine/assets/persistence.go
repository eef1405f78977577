package assets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// saveRegistry writes the registry to <root>/asset_registry.haregistry in
// the textual format described by §4.3.
func (m *Manager) saveRegistry() error {
	m.mu.Lock()
	keys := m.entries.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		e, ok := m.entries.Get(k)
		if ok {
			entries = append(entries, e)
		}
	}
	root := m.root
	m.mu.Unlock()

	full := filepath.Join(root, registryFileName)
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "version 1\n")
	fmt.Fprintf(w, "entry_count %d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "\nasset %d\n", uint64(e.UUID))
		fmt.Fprintf(w, "parent %d\n", uint64(e.Parent))
		fmt.Fprintf(w, "path %d %s\n", len(e.Path), e.Path)
	}
	return w.Flush()
}

// loadRegistryLocked rebuilds the registry from disk. Rebuilt entries
// always start at state=Unloaded, ref_count=0 (§4.3 Persistence format,
// §8 property 3). Caller holds m.mu.
func (m *Manager) loadRegistryLocked() error {
	full := filepath.Join(m.root, registryFileName)
	f, err := os.Open(full)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var cur *Entry
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "version", "entry_count":
			// informational only; the format has no other version today.
		case "asset":
			id, perr := strconv.ParseUint(fields[1], 10, 64)
			if perr != nil {
				continue
			}
			cur = &Entry{UUID: UUID(id), State: StateUnloaded, Job: InvalidJob}
		case "parent":
			if cur == nil {
				continue
			}
			pid, perr := strconv.ParseUint(fields[1], 10, 64)
			if perr == nil {
				cur.Parent = UUID(pid)
			}
		case "path":
			if cur == nil {
				continue
			}
			parts := strings.SplitN(fields[1], " ", 2)
			if len(parts) != 2 {
				continue
			}
			path := parts[1]
			cur.Path = path
			if typeIdx, ok := m.typeByExt[extOf(path)]; ok {
				cur.TypeInfoIndex = typeIdx
			} else if parent, _, name, emb := parseEmbeddedURI(path); emb {
				if typeIdx, ok := m.typeByExt[extOf(name)]; ok {
					cur.TypeInfoIndex = typeIdx
				}
				cur.Parent = parent
			}

			m.entries.Put(uint64(cur.UUID), cur)
			m.byPath[path] = cur.UUID
			if cur.Parent != InvalidUUID && isEmbeddedPath(path) {
				children, _ := m.embedded.Get(uint64(cur.Parent))
				m.embedded.Put(uint64(cur.Parent), append(children, cur.UUID))
			}
			cur = nil
		}
	}
	return sc.Err()
}
