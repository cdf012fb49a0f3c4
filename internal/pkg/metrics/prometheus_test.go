package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveTransition("techStack", OutcomeSuccess)
	rec.ObserveTransition("techStack", OutcomeSuccess)
	rec.ObserveTransition("techStack", OutcomeRejected)
	rec.ObserveAIRequest("suggest", OutcomeError, 1500*time.Millisecond)
	rec.ObserveExport("docx", OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.transitionsTotal.WithLabelValues("techStack", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.transitionsTotal.WithLabelValues("techStack", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.exportsTotal.WithLabelValues("docx", OutcomeSuccess)))

	count, err := testutil.GatherAndCount(reg, "brdgenius_ai_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	assert.NotPanics(t, func() {
		rec.ObserveTransition("problemStatement", OutcomeSuccess)
		rec.ObserveAIRequest("generate", OutcomeSuccess, time.Second)
		rec.ObserveExport("txt", OutcomeSuccess)
	})
}
