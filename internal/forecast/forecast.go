// Package forecast is the slow origin the demo service caches.
package forecast

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var summaries = [...]string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

type Forecast struct {
	Date         time.Time `json:"date" msgpack:"date" cbor:"date"`
	TemperatureC int       `json:"temperature_c" msgpack:"temperature_c" cbor:"temperature_c"`
	Summary      string    `json:"summary" msgpack:"summary" cbor:"summary"`
}

func (f Forecast) TemperatureF() int { return 32 + int(float64(f.TemperatureC)/0.5556) }

// Result wraps the origin's answer. A Result without data is a soft failure
// the origin reports instead of an error.
type Result struct {
	Location string     `json:"location" msgpack:"location" cbor:"location"`
	Data     []Forecast `json:"data" msgpack:"data" cbor:"data"`
}

// Valid reports whether the result is fit to cache.
func (r Result) Valid() bool { return r.Data != nil }

var ErrUnknownLocation = errors.New("forecast: unknown location")

// Service generates forecasts after Delay. Concurrent requests for the same
// location share one computation; a caller that gives up stops waiting
// without failing the others.
type Service struct {
	Delay time.Duration
	Days  int
	// EmptyEvery makes every n-th computation return a Result without data.
	EmptyEvery uint64

	group singleflight.Group
	calls atomic.Uint64
	now   func() time.Time
}

func NewService(delay time.Duration) *Service {
	return &Service{Delay: delay, Days: 5, now: time.Now}
}

// Calls reports how many computations actually ran.
func (s *Service) Calls() uint64 { return s.calls.Load() }

func (s *Service) Get(ctx context.Context, location string) (Result, error) {
	if location == "" {
		return Result{}, ErrUnknownLocation
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	// the shared computation outlives any one caller's cancellation
	ch := s.group.DoChan(location, func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), location)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (s *Service) compute(ctx context.Context, location string) (Result, error) {
	n := s.calls.Add(1)

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-t.C:
	}

	if s.EmptyEvery > 0 && n%s.EmptyEvery == 0 {
		return Result{Location: location}, nil
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	days := max(s.Days, 1)
	out := make([]Forecast, days)
	day := now().UTC().Truncate(24 * time.Hour)
	for i := range out {
		out[i] = Forecast{
			Date:         day.AddDate(0, 0, i+1),
			TemperatureC: rand.IntN(75) - 20,
			Summary:      summaries[rand.IntN(len(summaries))],
		}
	}
	return Result{Location: location, Data: out}, nil
}
