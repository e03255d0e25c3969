// Package sloghooks logs cache events through log/slog with sampling and
// key redaction.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/asidecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	OutcomeEvery    uint64
	StoreErrorEvery uint64
	// Outcomes are silent unless enabled; hits dominate traffic.
	LogOutcomes bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	outcomeCtr    atomic.Uint64
	storeErrorCtr atomic.Uint64
}

var _ asidecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Outcome(key string, o asidecache.Outcome) {
	if h.l == nil || !h.opts.LogOutcomes || !sample(h.opts.OutcomeEvery, &h.outcomeCtr) {
		return
	}
	h.l.Debug("asidecache.outcome",
		"key", h.redact(key),
		"outcome", o.String())
}

func (h *Hooks) StoreError(op, key string, err error) {
	if h.l == nil || !sample(h.opts.StoreErrorEvery, &h.storeErrorCtr) {
		return
	}
	h.l.Warn("asidecache.store_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) CodecError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.codec_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ExpireMissing(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("asidecache.expire_missing",
		"key", h.redact(key))
}

func (h *Hooks) BatchExpired(prefix string, matched, written int) {
	if h.l == nil {
		return
	}
	h.l.Info("asidecache.batch_expired",
		"prefix", prefix,
		"matched", matched,
		"written", written)
}

func (h *Hooks) BatchPartial(prefix string, failed, total int) {
	if h.l == nil {
		return
	}
	h.l.Error("asidecache.batch_partial",
		"prefix", prefix,
		"failed", failed,
		"total", total)
}
