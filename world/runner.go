package world

import (
	"context"
	"fmt"
	"time"
)

type tickerFactory func(time.Duration) (<-chan time.Time, func())

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// Sink receives each retired chunk once.
type Sink func(Result) error

// Run ticks s until every queued chunk is built, handing results to sink as
// they retire. With interval > 0 one tick runs per interval; otherwise ticks
// run back to back. Run returns ctx.Err() if the context ends first.
func Run(ctx context.Context, s *Scheduler, interval time.Duration, sink Sink) error {
	return run(ctx, s, interval, sink, defaultTickerFactory())
}

func run(ctx context.Context, s *Scheduler, interval time.Duration, sink Sink, newTicker tickerFactory) error {
	var tickerC <-chan time.Time
	if interval > 0 {
		c, stop := newTicker(interval)
		defer stop()
		tickerC = c
	}

	if err := s.Advance(); err != nil {
		return err
	}
	for !s.IsDone() {
		if tickerC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickerC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Tick(); err != nil {
			return err
		}
		if err := deliver(s, sink); err != nil {
			return err
		}
	}
	return deliver(s, sink)
}

func deliver(s *Scheduler, sink Sink) error {
	for _, r := range s.Drain() {
		if sink == nil {
			continue
		}
		if err := sink(r); err != nil {
			return fmt.Errorf("chunk %v: %w", r.Position, err)
		}
	}
	return nil
}
