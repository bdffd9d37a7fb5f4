//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAutocompleteShowsSuggestions(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()

	tf.UseBackend(backend.URL)
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("Your location"), "Should show the first address field")

	require.NoError(t, tf.Type("main st"))
	if err := tf.SeeAll(3*time.Second, "1 Main St, Springfield", "12 Main St, Springfield"); err != nil {
		tf.DumpTailOnFail(t, "autocomplete", 4096)
		t.Fatal(err)
	}

	// one debounced lookup for the whole word
	require.Equal(t, int32(1), backend.autocompleteHits.Load())
}

func TestShortInputNeverQueries(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()

	tf.UseBackend(backend.URL)
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.NoError(t, tf.Type("ma"))
	require.NoError(t, tf.Tab())
	require.NoError(t, tf.Type("el"))
	time.Sleep(500 * time.Millisecond)
	require.Equal(t, int32(0), backend.autocompleteHits.Load())
}

func TestSearchFlow(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()

	tf.UseBackend(backend.URL)
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	// pick the first suggestion for A; focus moves on to B
	require.NoError(t, tf.Type("1 main"))
	require.True(t, tf.SeePlain("› 1 Main St, Springfield"), "First suggestion should be highlighted")
	require.NoError(t, tf.Enter())

	require.NoError(t, tf.Type("9 elm"))
	require.True(t, tf.SeePlain("9 Elm St, Shelbyville"), "Should suggest B addresses")
	require.NoError(t, tf.Enter())
	time.Sleep(100 * time.Millisecond)

	// both filled in, so enter searches
	require.NoError(t, tf.Enter())
	if err := tf.SeeAll(5*time.Second, "Corner Cafe", "Halfway Deli"); err != nil {
		tf.DumpTailOnFail(t, "search-flow", 4096)
		t.Fatal(err)
	}
	require.Equal(t, int32(1), backend.midpointHits.Load())

	// open the details of the second place
	require.NoError(t, tf.Down())
	require.NoError(t, tf.Enter())
	require.True(t, tf.SeePlain("5 Middle Rd, Midtown"), "Should show place details")
	require.True(t, tf.SeePlain("★ 4.6 (87)"), "Should show the rating")

	require.NoError(t, tf.Back())
	require.NoError(t, tf.Esc())
	require.NoError(t, tf.Quit())
}
