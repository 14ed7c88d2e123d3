package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStreamReconnect(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.StreamReconnects)
	RecordStreamReconnect()
	RecordStreamReconnect()
	after := testutil.ToFloat64(DefaultMetrics.StreamReconnects)
	if after-before != 2 {
		t.Errorf("expected 2 reconnects recorded, got %f", after-before)
	}
}

func TestRecordProviderRequest(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.ProviderRequests.WithLabelValues("quotes"))
	RecordProviderRequest("quotes")
	after := testutil.ToFloat64(DefaultMetrics.ProviderRequests.WithLabelValues("quotes"))
	if after-before != 1 {
		t.Errorf("expected 1 quotes request recorded, got %f", after-before)
	}
}
