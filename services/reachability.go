package services

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	probeWorkers = 10
	probeTimeout = 10 * time.Second
)

// ProbeReachableURLs checks which of the given URLs still respond,
// using a bounded worker pool. HEAD is tried first with a GET fallback
// for servers that reject it. A nil client gets a default with a hard
// timeout. The returned slice holds the reachable subset, in no
// particular order.
func ProbeReachableURLs(ctx context.Context, client *http.Client, urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}

	urlChannel := make(chan string, probeWorkers)
	aliveChannel := make(chan string, len(urls))

	wg := &sync.WaitGroup{}
	for i := 0; i < probeWorkers; i++ {
		wg.Add(1)
		go probeWorker(ctx, client, urlChannel, aliveChannel, wg)
	}

feed:
	for _, u := range urls {
		select {
		case <-ctx.Done():
			break feed
		case urlChannel <- u:
		}
	}
	close(urlChannel)
	wg.Wait()
	close(aliveChannel)

	var alive []string
	for u := range aliveChannel {
		alive = append(alive, u)
	}
	slog.Debug("reachability probe finished", "probed", len(urls), "alive", len(alive))
	return alive
}

func probeWorker(ctx context.Context, client *http.Client, urls <-chan string, alive chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()

	// Keep draining after cancellation so the feeder never blocks on a
	// channel without receivers.
	for u := range urls {
		if ctx.Err() != nil {
			continue
		}
		if isReachable(ctx, client, http.MethodHead, u) ||
			isReachable(ctx, client, http.MethodGet, u) {
			alive <- u
		}
	}
}

func isReachable(ctx context.Context, client *http.Client, method, url string) bool {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false
	}
	res, err := client.Do(req)
	if err != nil {
		return false
	}
	res.Body.Close()
	return res.StatusCode < http.StatusBadRequest
}
