package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(cacheLookups.WithLabelValues(CacheHit))

	RecordCacheLookup(CacheHit)
	RecordCacheLookup(CacheHit)

	assert.Equal(t, before+2, testutil.ToFloat64(cacheLookups.WithLabelValues(CacheHit)))
}

func TestRecordPipeline(t *testing.T) {
	before := testutil.ToFloat64(pipelineRuns.WithLabelValues(PathFallback))

	RecordPipeline(PathFallback, 20*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(pipelineRuns.WithLabelValues(PathFallback)))
}

func TestRecordFallbackAndInsight(t *testing.T) {
	beforeFallback := testutil.ToFloat64(fallbacks.WithLabelValues("parse_empty"))
	beforeInsight := testutil.ToFloat64(insightsProduced.WithLabelValues("critical"))

	RecordFallback("parse_empty")
	RecordInsight("critical")

	assert.Equal(t, beforeFallback+1, testutil.ToFloat64(fallbacks.WithLabelValues("parse_empty")))
	assert.Equal(t, beforeInsight+1, testutil.ToFloat64(insightsProduced.WithLabelValues("critical")))
}

func TestRecordModelCall_LabelsStatus(t *testing.T) {
	RecordModelCall("groq", time.Second, nil)
	RecordModelCall("groq", time.Second, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(modelLatency))
}
