package health

import (
	"sync"
	"testing"
)

func TestSetReadyConcurrentWithReads(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	if h.isReady.Load() {
		t.Fatal("handler must start not ready")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.SetReady()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.isReady.Load()
		}
	}()
	wg.Wait()

	if !h.isReady.Load() {
		t.Error("handler should report ready after SetReady")
	}
}
