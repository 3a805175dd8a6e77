package testfixtures

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("mtg")
	assert.Equal(t, "mtg-1", gen.Next())
	assert.Equal(t, "mtg-2", gen.Next())

	gen.Reset()
	assert.Equal(t, "mtg-1", gen.Next())
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewIDGenerator("").Next())

	var nilGen *IDGenerator
	assert.Equal(t, "id-1", nilGen.NextFunc()())
}

func TestIDGeneratorIsUniqueUnderConcurrency(t *testing.T) {
	gen := NewIDGenerator("c")
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				id := gen.Next()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 16*50)
}
