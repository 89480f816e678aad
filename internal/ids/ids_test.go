package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DisjointSeeds(t *testing.T) {
	for range 100 {
		s := New()
		assert.Less(t, s.Send.Current(), int64(receiveBase))
		assert.GreaterOrEqual(t, s.Receive.Current(), int64(receiveBase))
	}
}

func TestCounter_IncrementsByOne(t *testing.T) {
	s := NewSeeded(10, 200)
	assert.Equal(t, int64(11), s.Send.Next())
	assert.Equal(t, int64(12), s.Send.Next())
	assert.Equal(t, int64(201), s.Receive.Next())
	assert.Equal(t, int64(12), s.Send.Current())
}

func TestCounter_ConcurrentNextIsUnique(t *testing.T) {
	s := NewSeeded(0, 0)
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := s.Send.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
