package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/routeconf/pkg/errors"
)

func TestNewValidation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	_, err := New(nil, 0, noop)
	assert.True(t, errors.IsValidationError(err))

	_, err = New([]string{"routers.yaml"}, 0, nil)
	assert.True(t, errors.IsValidationError(err))

	w, err := New([]string{"routers.yaml"}, 0, noop)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, w.debounce)
}

func TestRunTriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "routers.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(target, []byte("routers: []\n"), 0o600))

	var runs atomic.Int32
	w, err := New([]string{target}, 50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("logged and ignored")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("routers:\n  - address: 10.0.0.1\n"), 0o600))
	}

	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load(), "a burst of writes triggers one run")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "nope", "routers.yaml")}, 0, func(context.Context) error { return nil })
	require.NoError(t, err)

	err = w.Run(context.Background())
	assert.True(t, errors.IsIO(err))
}
