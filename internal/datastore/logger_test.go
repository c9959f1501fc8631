package datastore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLoggerConcurrentAccess(t *testing.T) {
	// First use races initialization against readers; the race detector
	// flags any unsynchronized publish of the logger handle.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if getLogger() == nil {
				t.Error("getLogger returned nil")
			}
		}()
	}
	wg.Wait()

	// Repeated initialization is a no-op and close stays safe afterwards.
	assert.NotNil(t, getLogger())
	assert.NoError(t, CloseLogger())
}
