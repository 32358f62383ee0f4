package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
)

type fakeSource struct {
	snapshot goAuthClient.MetricsSnapshot
}

func (f fakeSource) MetricsSnapshot() goAuthClient.MetricsSnapshot { return f.snapshot }

func TestCollectEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters:   map[goAuthClient.MetricID]uint64{},
			Histograms: map[goAuthClient.MetricID][]uint64{},
		},
	})

	if n := testutil.CollectAndCount(exp); n != 0 {
		t.Fatalf("expected no series for disabled metrics, got %d", n)
	}
}

func TestCollectCountersAndHistogram(t *testing.T) {
	counters := map[goAuthClient.MetricID]uint64{}
	for _, def := range internaldefs.CounterDefs {
		counters[def.ID] = 0
	}
	counters[goAuthClient.MetricLoginSuccess] = 7

	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters: counters,
			Histograms: map[goAuthClient.MetricID][]uint64{
				goAuthClient.MetricRemoteLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
	})

	if n := testutil.CollectAndCount(exp); n != len(internaldefs.CounterDefs)+1 {
		t.Fatalf("unexpected series count %d", n)
	}

	want := `
# HELP goauth_client_login_success_total Logins that stored a token and fetched the user.
# TYPE goauth_client_login_success_total counter
goauth_client_login_success_total 7
`
	if err := testutil.CollectAndCompare(exp, strings.NewReader(want), "goauth_client_login_success_total"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	if !strings.Contains(out, `goauth_client_remote_latency_seconds_bucket{le="0.025"} 1`) {
		t.Fatalf("expected first histogram bucket, got:\n%s", out)
	}
	if !strings.Contains(out, `goauth_client_remote_latency_seconds_bucket{le="+Inf"} 36`) {
		t.Fatalf("expected +Inf cumulative bucket, got:\n%s", out)
	}
	if !strings.Contains(out, "goauth_client_remote_latency_seconds_count 36") {
		t.Fatalf("expected histogram count, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters:   map[goAuthClient.MetricID]uint64{goAuthClient.MetricLoginSuccess: 1},
			Histograms: map[goAuthClient.MetricID][]uint64{},
		},
	})

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExporterReadsManager(t *testing.T) {
	mgr, err := goAuthClient.New().
		WithConfig(func() goAuthClient.Config {
			c := goAuthClient.DefaultConfig()
			c.Endpoint.BaseURL = "http://127.0.0.1:1"
			return c
		}()).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n := testutil.CollectAndCount(NewExporter(mgr)); n != len(internaldefs.CounterDefs) {
		t.Fatalf("expected every counter, got %d", n)
	}
}
