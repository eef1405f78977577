package assets

import (
	"github.com/hadean/forge/engine/core"
)

// watchLoop is the ambient dev-time hot-reload hook: it only logs changes
// under the asset root today. Grounded on the teacher's
// engine/assets/assets.go watch loop, trimmed down because actual
// reimport-on-change is a host/editor policy decision (§1 out-of-scope:
// "the host application ... submits scene data"), not a core contract.
func (m *Manager) watchLoop() {
	for {
		select {
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			core.LogDebug("assets: filesystem event %s on %s", ev.Op.String(), ev.Name)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("assets: watcher error: %s", err.Error())
		case <-m.watchDir:
			return
		}
	}
}
