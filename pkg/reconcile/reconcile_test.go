package reconcile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
	"github.com/agentstation/routeconf/pkg/routers"
	"github.com/agentstation/routeconf/pkg/store"
)

const header = "#ip,username,password\n"

func newReconciler(t *testing.T, opts ...Option) Reconciler {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func storeWith(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func contents(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReconcileAddsToEmptyStore(t *testing.T) {
	path := storeWith(t, header)

	result, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{
		{Address: "10.0.0.1", Username: "a", Password: "b"},
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.AddedCount)
	assert.Equal(t, 0, result.ExistingCount)
	assert.Equal(t, 1, result.RequestedCount)
	assert.Equal(t, "existing routers: 0, requested routers: 1, added 1 routers", result.Message)
	assert.Equal(t, header+"10.0.0.1,a,b\n", contents(t, path))
}

func TestReconcileSkipsExistingAddress(t *testing.T) {
	path := storeWith(t, header+"10.0.0.1,a,b\n")

	result, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{
		{Address: "10.0.0.1", Username: "other", Password: "creds"},
		{Address: "10.0.0.2", Username: "c", Password: "d"},
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.ExistingCount)
	assert.Equal(t, 1, result.AddedCount)
	assert.Equal(t, []string{"10.0.0.2"}, result.Added)
	assert.Equal(t, []string{"10.0.0.1"}, result.Skipped)
	assert.Equal(t, header+"10.0.0.1,a,b\n10.0.0.2,c,d\n", contents(t, path))
}

func TestReconcileIsIdempotent(t *testing.T) {
	path := storeWith(t, header)
	request := []routers.Record{{Address: "10.0.0.1"}, {Address: "10.0.0.2", Username: "u"}}
	r := newReconciler(t)

	first, err := r.Reconcile(context.Background(), path, request)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	after := contents(t, path)

	second, err := r.Reconcile(context.Background(), path, request)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, 0, second.AddedCount)
	assert.Equal(t, 2, second.ExistingCount)
	assert.Equal(t, after, contents(t, path))
}

func TestReconcileAbsentRequestDoesNoIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routers.csv")

	result, err := newReconciler(t).Reconcile(context.Background(), path, nil)
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Equal(t, NoRoutersMessage, result.Message)
	assert.NoFileExists(t, path)
}

func TestReconcileEmptyRequestCreatesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routers.csv")

	result, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.True(t, result.StoreCreated)
	assert.Equal(t, "existing routers: 0, requested routers: 0, added 0 routers", result.Message)
	assert.Equal(t, header, contents(t, path))
}

func TestReconcileDuplicateInRequest(t *testing.T) {
	request := []routers.Record{
		{Address: "10.0.0.5", Username: "x", Password: "y"},
		{Address: "10.0.0.5", Username: "x", Password: "y"},
	}

	t.Run("default appends every occurrence", func(t *testing.T) {
		path := storeWith(t, header)
		result, err := newReconciler(t).Reconcile(context.Background(), path, request)
		require.NoError(t, err)
		assert.Equal(t, 2, result.AddedCount)
		assert.Equal(t, header+"10.0.0.5,x,y\n10.0.0.5,x,y\n", contents(t, path))
	})

	t.Run("deduplicate appends once", func(t *testing.T) {
		path := storeWith(t, header)
		result, err := newReconciler(t, WithDeduplicate(true)).Reconcile(context.Background(), path, request)
		require.NoError(t, err)
		assert.Equal(t, 1, result.AddedCount)
		assert.Equal(t, []string{"10.0.0.5"}, result.Skipped)
		assert.Equal(t, header+"10.0.0.5,x,y\n", contents(t, path))
	})
}

func TestReconcileTrimsAndValidates(t *testing.T) {
	path := storeWith(t, header)

	_, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{
		{Address: "10.0.0.1"},
		{Address: "   "},
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, header, contents(t, path), "validation happens before any write")

	result, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{
		{Address: " 10.0.0.9 ", Username: " u ", Password: " p "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, result.Added)
	assert.Equal(t, header+"10.0.0.9,u,p\n", contents(t, path))

	_, err = newReconciler(t).Reconcile(context.Background(), "", []routers.Record{{Address: "x"}})
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcileParseErrorIsFatal(t *testing.T) {
	path := storeWith(t, "not a header\n")

	_, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{{Address: "10.0.0.1"}})
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Equal(t, "not a header\n", contents(t, path))
}

func TestReconcileLenient(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	path := storeWith(t, "not a header\n")

	result, err := newReconciler(t, WithLenient(true)).Reconcile(ctx, path, []routers.Record{{Address: "10.0.0.1"}})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExistingCount)
	assert.Equal(t, 1, result.AddedCount)
	assert.Len(t, result.Warnings, 1)
	tl.AssertContains(t, "treating it as empty")
	assert.Equal(t, "not a header\n10.0.0.1,,\n", contents(t, path))
}

func TestReconcileStoreIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "routers.csv")

	_, err := newReconciler(t).Reconcile(context.Background(), path, []routers.Record{{Address: "10.0.0.1"}})
	require.Error(t, err)
	assert.True(t, errors.IsIO(err))
}

func TestReconcileDryRun(t *testing.T) {
	t.Run("existing store is untouched", func(t *testing.T) {
		path := storeWith(t, header+"10.0.0.1,a,b\n")

		result, err := newReconciler(t, WithDryRun(true)).Reconcile(context.Background(), path, []routers.Record{
			{Address: "10.0.0.1"}, {Address: "10.0.0.2"},
		})
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.True(t, result.Changed)
		assert.Equal(t, []string{"10.0.0.2"}, result.Added)
		assert.Equal(t, header+"10.0.0.1,a,b\n", contents(t, path))
	})

	t.Run("missing store is not created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routers.csv")

		result, err := newReconciler(t, WithDryRun(true)).Reconcile(context.Background(), path, []routers.Record{{Address: "10.0.0.1"}})
		require.NoError(t, err)
		assert.True(t, result.StoreCreated)
		assert.Equal(t, 1, result.AddedCount)
		assert.NoFileExists(t, path)
	})
}

func TestReconcileLegacyFormat(t *testing.T) {
	path := storeWith(t, "10.0.0.1, a, b\n")

	result, err := newReconciler(t, WithFormat(store.FormatLegacy)).Reconcile(context.Background(), path, []routers.Record{
		{Address: "10.0.0.1", Username: "a", Password: "b"},
		{Address: "10.0.0.2", Username: "c", Password: "d"},
	})
	require.NoError(t, err)

	assert.Equal(t, store.FormatLegacy, result.Format)
	assert.Equal(t, 1, result.ExistingCount)
	assert.Equal(t, 1, result.AddedCount)
	assert.Equal(t, "10.0.0.1, a, b\n10.0.0.2, c, d\n", contents(t, path))
}

func TestReconcileNeverLogsPasswords(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := newReconciler(t).Reconcile(ctx, storeWith(t, header), []routers.Record{
		{Address: "10.0.0.1", Username: "admin", Password: "hunter2"},
	})
	require.NoError(t, err)

	tl.AssertContains(t, "10.0.0.1")
	tl.AssertNotContains(t, "hunter2")
}

func TestReconcileTagsEventsWithRouterAndStore(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	path := storeWith(t, header+"10.0.0.1,a,b\n")

	_, err := newReconciler(t).Reconcile(ctx, path, []routers.Record{
		{Address: "10.0.0.1", Username: "a", Password: "b"},
		{Address: "10.0.0.2", Username: "c", Password: "d"},
	})
	require.NoError(t, err)

	routerByMessage := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(tl.Output()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if router, ok := entry["router"].(string); ok {
			routerByMessage[entry["message"].(string)] = router
			assert.Equal(t, path, entry["store"])
			assert.Equal(t, "reconcile", entry["operation"])
		}
	}
	assert.Equal(t, map[string]string{
		"Router already present": "10.0.0.1",
		"Appending router":       "10.0.0.2",
	}, routerByMessage)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(WithFormat(store.Format("xml")))
	assert.True(t, errors.IsValidationError(err))
}

func TestResultSummary(t *testing.T) {
	var nilResult *Result
	assert.Empty(t, nilResult.Summary())
	assert.False(t, nilResult.HasChanges())

	r := &Result{ExistingCount: 3, RequestedCount: 2, AddedCount: 1}
	assert.Equal(t, "existing routers: 3, requested routers: 2, added 1 routers", r.Summary())
	assert.True(t, r.HasChanges())
}
