package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundRobinPickerWrapsAround(t *testing.T) {
	picker := newRoundRobinColorPicker([]string{"#111111", "#222222", "#333333"})

	require.Equal(t, "#111111", picker.Next())
	require.Equal(t, "#222222", picker.Next())
	require.Equal(t, "#333333", picker.Next())
	require.Equal(t, "#111111", picker.Next())
}

func TestRoundRobinPickerDefaultsToPalette(t *testing.T) {
	picker := newRoundRobinColorPicker(nil)

	for _, want := range defaultColorPalette {
		require.Equal(t, want, picker.Next())
	}
}

func TestRoundRobinPickerConcurrentAllocation(t *testing.T) {
	picker := newRoundRobinColorPicker(nil)

	const joins = 60
	counts := make(chan string, joins)

	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts <- picker.Next()
		}()
	}
	wg.Wait()
	close(counts)

	// Concurrent joins still walk the palette evenly.
	seen := make(map[string]int)
	for color := range counts {
		seen[color]++
	}
	for _, color := range defaultColorPalette {
		require.Equal(t, joins/len(defaultColorPalette), seen[color])
	}
}
