package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRelevant(t *testing.T) {
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "src/Hub.sol", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "src/Hub.sol", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "src/Hub.sol", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "src/Hub.sol", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "src/Hub.sol", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "docs/DEV_STATUS_VAULTS.md", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "storage/snapshots/Hub.json", Op: fsnotify.Create}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, relevant(c.ev), "%s %s", c.ev.Op, c.ev.Name)
	}
}

func TestRun_DebouncesSolidityChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "hub"), 0o755))

	fired := make(chan struct{}, 8)
	ready := make(chan struct{})
	w := New(root, []string{"src", "missing"}, func(context.Context) error {
		fired <- struct{}{}
		return nil
	}, WithDebounce(50*time.Millisecond))
	w.ready = func() { close(ready) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-ready

	// unrelated files do not trigger
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.md"), []byte("x"), 0o644))
	select {
	case <-fired:
		t.Fatal("non-Solidity change triggered a regeneration")
	case <-time.After(200 * time.Millisecond):
	}

	// a burst of writes in a nested directory collapses into one call
	path := filepath.Join(root, "src", "hub", "Hub.sol")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("contract Hub {}"), 0o644))
	}
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no regeneration after a Solidity change")
	}
	select {
	case <-fired:
		t.Fatal("burst produced more than one regeneration")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}
