package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/pkg/apply"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/reconcile"
)

func TestObserveReconcile(t *testing.T) {
	m := New()

	m.ObserveReconcile(&reconcile.Result{ExistingCount: 4, RequestedCount: 3, AddedCount: 2})
	m.ObserveReconcile(&reconcile.Result{ExistingCount: 6, RequestedCount: 3, AddedCount: 1, DryRun: true})

	assert.Equal(t, 6.0, testutil.ToFloat64(m.RoutersExisting))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RoutersRequested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoutersAddedTotal))
	assert.Greater(t, testutil.ToFloat64(m.LastRunTimestamp), 0.0)
}

func TestObserveApply(t *testing.T) {
	m := New()

	m.ObserveApply(&apply.Outcome{Duration: time.Second}, nil)
	m.ObserveApply(&apply.Outcome{Duration: time.Second}, errors.NewProcessError("apply", "route.py", "", 2, nil))
	m.ObserveApply(nil, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProgramRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProgramRunsTotal.WithLabelValues("error")))
}

func TestObserveFailureAndSuccess(t *testing.T) {
	m := New()

	m.ObserveFailure(errors.NewNotFoundError(errors.ResourceProgram, "route.py"))
	m.ObserveSuccess()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("program_not_found")))
}

func TestKind(t *testing.T) {
	tests := map[string]error{
		"program_not_found": errors.NewNotFoundError(errors.ResourceProgram, "x"),
		"program_failed":    errors.NewProcessError("apply", "x", "", 1, nil),
		"store_parse":       errors.NewParseError("csv", "s", "bad", nil),
		"store_io":          errors.NewIOError("open", "s", os.ErrPermission),
		"validation":        errors.NewValidationError("address", "", "required"),
		"other":             errors.New("boom"),
	}
	for want, err := range tests {
		assert.Equal(t, want, Kind(err))
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveReconcile(&reconcile.Result{ExistingCount: 1, RequestedCount: 1, AddedCount: 1})
	m.ObserveSuccess()

	path := filepath.Join(t.TempDir(), "routeconf.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "routeconf_routers_added_total 1")
	assert.Contains(t, string(data), `routeconf_runs_total{result="success"} 1`)

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.True(t, errors.IsIO(err))
}

func TestOptions(t *testing.T) {
	assert.Len(t, New().Options(), 3)
}

func TestRunCountsValidationFailures(t *testing.T) {
	m := New()

	_, err := routeconf.Run(context.Background(), routeconf.DefaultConfig(), m.Options()...)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("validation")))
}
