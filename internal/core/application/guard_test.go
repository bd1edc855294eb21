package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	t.Run("exclusive_per_agreement", func(t *testing.T) {
		g := newGuard()

		require.True(t, g.tryAcquire("a"))
		require.False(t, g.tryAcquire("a"))
		require.True(t, g.tryAcquire("b"))

		g.release("a")
		require.True(t, g.tryAcquire("a"))
	})

	t.Run("concurrent_acquire", func(t *testing.T) {
		g := newGuard()

		var wg sync.WaitGroup
		acquired := make(chan bool, 100)
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acquired <- g.tryAcquire("contended")
			}()
		}
		wg.Wait()
		close(acquired)

		winners := 0
		for ok := range acquired {
			if ok {
				winners++
			}
		}
		require.Equal(t, 1, winners)
	})
}
