package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/asidecache"
)

type counting struct {
	asidecache.NopHooks
	mu       sync.Mutex
	outcomes int
	errs     int
	block    chan struct{}
}

func (c *counting) Outcome(string, asidecache.Outcome) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.outcomes++
	c.mu.Unlock()
}

func (c *counting) StoreError(string, string, error) {
	c.mu.Lock()
	c.errs++
	c.mu.Unlock()
}

func TestDeliversAndDrainsOnClose(t *testing.T) {
	inner := &counting{}
	h := New(inner, 2, 64)
	for range 50 {
		h.Outcome("k", asidecache.OutcomeHit)
	}
	h.StoreError("get", "k", errors.New("down"))
	h.Close()

	if inner.outcomes != 50 || inner.errs != 1 {
		t.Fatalf("outcomes=%d errs=%d", inner.outcomes, inner.errs)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &counting{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker blocks on the first event; one more fits in the queue
	for range 10 {
		h.Outcome("k", asidecache.OutcomeHit)
	}
	close(inner.block)
	h.Close()

	if inner.outcomes+int(h.Dropped()) != 10 {
		t.Fatalf("delivered %d + dropped %d != 10", inner.outcomes, h.Dropped())
	}
	if h.Dropped() == 0 {
		t.Fatalf("expected drops with a full queue")
	}
}

func TestAfterCloseIsSafe(t *testing.T) {
	h := New(nil, 1, 1)
	h.Close()
	h.Close()
	h.BatchPartial("p", 1, 2)
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}
