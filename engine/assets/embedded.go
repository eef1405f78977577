package assets

import "fmt"

// embeddedURI formats the synthetic path for a child asset embedded inside
// a parent file: `@<parent_uuid>-<data_id>/<name>.<ext>` (§6).
func embeddedURI(parent UUID, dataID uint64, nameWithExt string) string {
	return fmt.Sprintf("@%d-%d/%s", uint64(parent), dataID, nameWithExt)
}

// parseEmbeddedURI parses the synthetic embedded path back into its parts,
// matching `@%llu-%llu/%s` (§6). ok is false for ordinary (non-embedded)
// paths.
func parseEmbeddedURI(path string) (parent UUID, dataID uint64, name string, ok bool) {
	if len(path) == 0 || path[0] != '@' {
		return 0, 0, "", false
	}
	var p, d uint64
	var n string
	count, err := fmt.Sscanf(path, "@%d-%d/%s", &p, &d, &n)
	if err != nil || count != 3 {
		return 0, 0, "", false
	}
	return UUID(p), d, n, true
}

// isEmbeddedPath reports whether a canonicalized path uses the embedded
// URI scheme.
func isEmbeddedPath(path string) bool {
	_, _, _, ok := parseEmbeddedURI(path)
	return ok
}
