package scheduler

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"cortex/internal/logger"
)

func init() {
	logger.Init("test")
}

func TestNew(t *testing.T) {
	noop := func(context.Context) error { return nil }

	t.Run("registers_jobs", func(t *testing.T) {
		s, err := New(time.UTC,
			Job{Name: "price_refresh", Spec: "*/30 10-18 * * 1-5", Run: noop},
			Job{Name: "anomaly_scan", Spec: "0 9 * * *", Run: noop},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		names := s.Jobs()
		sort.Strings(names)
		if len(names) != 2 || names[0] != "anomaly_scan" || names[1] != "price_refresh" {
			t.Errorf("unexpected jobs %v", names)
		}
	})

	t.Run("invalid_spec", func(t *testing.T) {
		if _, err := New(time.UTC, Job{Name: "bad", Spec: "every tuesday", Run: noop}); err == nil {
			t.Error("expected error for invalid spec")
		}
	})
}

func TestWrap(t *testing.T) {
	s, err := New(time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("applies_timeout", func(t *testing.T) {
		var deadline bool
		s.wrap(Job{Name: "t", Timeout: time.Minute, Run: func(ctx context.Context) error {
			_, deadline = ctx.Deadline()
			return nil
		}})()
		if !deadline {
			t.Error("expected job context to carry a deadline")
		}
	})

	t.Run("swallows_errors", func(t *testing.T) {
		ran := false
		s.wrap(Job{Name: "e", Run: func(context.Context) error {
			ran = true
			return errors.New("boom")
		}})()
		if !ran {
			t.Error("expected job to run")
		}
	})

	t.Run("stop_cancels_job_context", func(t *testing.T) {
		s.Start()
		if err := s.Stop(context.Background()); err != nil {
			t.Fatalf("unexpected stop error: %v", err)
		}
		var ctxErr error
		s.wrap(Job{Name: "c", Run: func(ctx context.Context) error {
			ctxErr = ctx.Err()
			return nil
		}})()
		if !errors.Is(ctxErr, context.Canceled) {
			t.Errorf("expected canceled context after stop, got %v", ctxErr)
		}
	})
}
