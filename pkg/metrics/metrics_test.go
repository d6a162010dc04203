package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "fontbatch/pkg/metrics"
)

func TestRecorder_RecordInvocation(t *testing.T) {
	r := NewRecorder()

	r.RecordInvocation("SUCCESS", 20*time.Millisecond)
	r.RecordInvocation("SUCCESS", 30*time.Millisecond)
	r.RecordInvocation("FAILED", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.InvocationsTotal.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.InvocationsTotal.WithLabelValues("FAILED")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.InvocationDuration))
}

func TestRecorder_RecordBatch(t *testing.T) {
	r := NewRecorder()

	r.RecordBatch(4, 2*time.Second)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.ConfigsDiscovered))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.BatchDuration))
	assert.Greater(t, testutil.ToFloat64(r.LastBatchTimestamp), 0.0)
}

func TestRecorder_IsolatedRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.RecordInvocation("FAILED", time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.InvocationsTotal.WithLabelValues("FAILED")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordInvocation("SUCCESS", 10*time.Millisecond)
	r.RecordBatch(1, 10*time.Millisecond)

	path := filepath.Join(t.TempDir(), "fontbatch.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fontbatch_renderer_invocations_total{status="SUCCESS"} 1`)
	assert.Contains(t, string(data), "fontbatch_batch_configs_discovered 1")
}
