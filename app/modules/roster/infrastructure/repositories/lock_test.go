package rosterdb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	// The map is only read concurrently; each counter is guarded by its key.
	counts := map[string]*int{"NU1": new(int), "NU2": new(int)}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		key := "NU1"
		if i%2 == 0 {
			key = "NU2"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock(key)
			defer unlock()
			*counts[key]++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, *counts["NU1"])
	assert.Equal(t, 50, *counts["NU2"])
	assert.Empty(t, k.locks, "released keys are forgotten")
}
