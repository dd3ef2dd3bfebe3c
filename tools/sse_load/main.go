// Command sse_load holds many concurrent connections to the balance stream
// and reports how fast snapshots arrive. Useful for checking that the SSE
// handler keeps up while the account is being mutated.
//
// Usage:
//
//	go run ./tools/sse_load --url http://localhost:8080/balance/stream --conns 200 --dur 30s
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// snapshot mirrors the JSON payload of a "balance" event.
type snapshot struct {
	Balance        string `json:"balance"`
	PortfolioValue string `json:"portfolio_value"`
	ProfitOrLoss   string `json:"profit_or_loss"`
}

type counters struct {
	connected  int64
	failed     int64
	events     int64
	decodeErrs int64

	mu   sync.Mutex
	last snapshot
}

func (c *counters) record(snap snapshot) {
	atomic.AddInt64(&c.events, 1)
	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
}

func (c *counters) lastSeen() snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func main() {
	var (
		url   string
		conns int
		dur   time.Duration
	)
	flag.StringVar(&url, "url", "http://localhost:8080/balance/stream", "balance stream URL")
	flag.IntVar(&conns, "conns", 100, "concurrent connections to hold open")
	flag.DurationVar(&dur, "dur", 30*time.Second, "how long to stay connected (0 = until interrupted)")
	flag.Parse()

	if conns <= 0 {
		log.Fatalf("invalid conns: %d", conns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if dur > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dur)
		defer cancel()
	}

	log.Printf("streaming from %s with %d connections", url, conns)

	var c counters
	var wg sync.WaitGroup
	for i := 0; i < conns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stream(ctx, url, &c); err != nil && ctx.Err() == nil {
				atomic.AddInt64(&c.failed, 1)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	start := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-ticker.C:
			log.Printf("connected=%d failed=%d events=%d decode_errs=%d elapsed=%s",
				atomic.LoadInt64(&c.connected),
				atomic.LoadInt64(&c.failed),
				atomic.LoadInt64(&c.events),
				atomic.LoadInt64(&c.decodeErrs),
				time.Since(start).Truncate(time.Second))
		}
	}

	elapsed := time.Since(start)
	events := atomic.LoadInt64(&c.events)
	last := c.lastSeen()
	fmt.Printf("done: connected=%d failed=%d events=%d decode_errs=%d elapsed=%s events/s=%.2f\n",
		atomic.LoadInt64(&c.connected),
		atomic.LoadInt64(&c.failed),
		events,
		atomic.LoadInt64(&c.decodeErrs),
		elapsed.Truncate(time.Millisecond),
		float64(events)/elapsed.Seconds())
	if last.Balance != "" {
		fmt.Printf("last snapshot: balance=%s portfolio_value=%s profit_or_loss=%s\n",
			last.Balance, last.PortfolioValue, last.ProfitOrLoss)
	}
}

// stream holds one SSE connection open and decodes every balance event on
// it. Heartbeat comments and id/event framing lines are skipped.
func stream(ctx context.Context, url string, c *counters) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// no client timeout, the connection is meant to stay open
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	atomic.AddInt64(&c.connected, 1)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var snap snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			atomic.AddInt64(&c.decodeErrs, 1)
			continue
		}
		c.record(snap)
	}
	return scanner.Err()
}
