package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(FallbackTotal.WithLabelValues("test_reason"))

	RecordFallback("test_reason")

	assert.Equal(t, before+1, testutil.ToFloat64(FallbackTotal.WithLabelValues("test_reason")))
}

func TestRecordAggregatorFetch(t *testing.T) {
	fetches := testutil.ToFloat64(AggregatorFetchTotal.WithLabelValues(OutcomeSuccess))
	offers := testutil.ToFloat64(AggregatorOffersReceived)

	RecordAggregatorFetch(OutcomeSuccess, 120*time.Millisecond, 4)
	RecordAggregatorFetch(OutcomeSuccess, 80*time.Millisecond, 0)

	assert.Equal(t, fetches+2, testutil.ToFloat64(AggregatorFetchTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, offers+4, testutil.ToFloat64(AggregatorOffersReceived))
}

func TestRecordResourceProcessed(t *testing.T) {
	before := testutil.ToFloat64(ResourcesProcessed.WithLabelValues("catalog", "true"))

	RecordResourceProcessed("catalog", true)

	assert.Equal(t, before+1, testutil.ToFloat64(ResourcesProcessed.WithLabelValues("catalog", "true")))
}
