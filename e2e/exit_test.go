//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplicationExit(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp(), "Failed to start app")

	// Wait for TUI to initialize and render
	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("Midlo"), "Should show midlo title")

	// Set up exit monitoring before quitting
	done := make(chan error, 1)
	go func() {
		done <- tf.cmd.Wait()
	}()

	t.Logf("Sending Ctrl+C to quit application...")
	require.NoError(t, tf.Quit())

	select {
	case exitErr := <-done:
		require.NoError(t, exitErr, "Process should exit cleanly")
	case <-time.After(2 * time.Second):
		tf.DumpTailOnFail(t, "exit-failure", 4096)
		t.Fatal("Application did not exit within timeout")
	}

	// the TUI logs to a file, never to the terminal
	_, err := os.Stat(filepath.Join(tf.Workspace(), "midlo.log"))
	require.NoError(t, err, "Log file should be written")
}

func TestApplicationExitWhileTyping(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()

	tf.UseBackend(backend.URL)
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	done := make(chan error, 1)
	go func() {
		done <- tf.cmd.Wait()
	}()

	// quit with a debounce still pending
	require.NoError(t, tf.Type("main"))
	require.NoError(t, tf.Quit())

	select {
	case exitErr := <-done:
		require.NoError(t, exitErr, "Process should exit cleanly")
	case <-time.After(2 * time.Second):
		tf.DumpTailOnFail(t, "exit-typing-failure", 4096)
		t.Fatal("Application did not exit within timeout")
	}
}
