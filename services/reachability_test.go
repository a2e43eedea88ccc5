package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbeReachableURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/alive":
			w.WriteHeader(http.StatusOK)
		case "/headless":
			// Rejects HEAD so the GET fallback has to kick in.
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	alive := ProbeReachableURLs(context.Background(), srv.Client(), []string{
		srv.URL + "/alive",
		srv.URL + "/headless",
		srv.URL + "/gone",
		"http://127.0.0.1:1/unreachable",
	})

	assert.ElementsMatch(t, []string{srv.URL + "/alive", srv.URL + "/headless"}, alive)
}

func TestProbeReachableURLsEmptyInput(t *testing.T) {
	assert.Empty(t, ProbeReachableURLs(context.Background(), nil, nil))
}

func TestProbeReachableURLsReturnsAfterCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Far more urls than workers: every send must still find a receiver.
	urls := make([]string, 50)
	for i := range urls {
		urls[i] = srv.URL
	}

	done := make(chan []string, 1)
	go func() {
		done <- ProbeReachableURLs(ctx, srv.Client(), urls)
	}()

	select {
	case alive := <-done:
		assert.Empty(t, alive)
	case <-time.After(3 * time.Second):
		t.Fatal("ProbeReachableURLs did not return after context cancellation")
	}
}
