package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSystemSubmitAndWait(t *testing.T) {
	js := newJobSystem(2, 0)
	h := js.submit(InvalidJob, func() LoadResult { return LoadResult{OK: true} })
	require.True(t, js.wait(h).OK)
	assert.True(t, js.isDone(h))
}

func TestJobSystemWaitOnUnknownHandleFailsWithoutBlocking(t *testing.T) {
	js := newJobSystem(2, 0)
	result := js.wait(InvalidJob)
	assert.False(t, result.OK)
}

func TestJobSystemReleaseBoundsPoolAcrossManyReloadCycles(t *testing.T) {
	js := newJobSystem(4, 0)
	// More than maxInFlightJobs submit+release cycles on a single logical
	// slot would exhaust an unbounded pool; release must keep the table
	// from growing past the previous cycle's single freed slot.
	for i := 0; i < maxInFlightJobs*2; i++ {
		h := js.submit(InvalidJob, func() LoadResult { return LoadResult{OK: true} })
		require.True(t, js.wait(h).OK)
		js.release(h)
	}
}
