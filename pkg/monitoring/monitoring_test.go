package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/logger"
)

func TestMetricsServedUnderPrefix(t *testing.T) {
	conf := config.Monitoring{URLPrefix: "/internal", MetricEnabled: true}
	m, err := New(conf, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	m.Run()
	defer func() { _ = m.Shutdown(context.Background()) }()

	get := func(path string) int {
		url := fmt.Sprintf("http://%s%s", m.server.Addr, path)
		deadline := time.Now().Add(2 * time.Second)
		for {
			resp, err := http.Get(url)
			if err == nil {
				resp.Body.Close()
				return resp.StatusCode
			}
			if time.Now().After(deadline) {
				t.Fatalf("GET %s: %v", url, err)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	if code := get("/internal/metrics"); code != http.StatusOK {
		t.Fatalf("prefixed metrics: status %d, want %d", code, http.StatusOK)
	}
	if code := get("/metrics"); code != http.StatusNotFound {
		t.Fatalf("unprefixed metrics: status %d, want %d", code, http.StatusNotFound)
	}
}
