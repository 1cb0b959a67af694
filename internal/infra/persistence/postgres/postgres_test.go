package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// growingStats reports one more pool wait, 100ms longer, on every call.
type growingStats struct {
	mu    sync.Mutex
	calls int64
}

func (s *growingStats) Stats() sql.DBStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	return sql.DBStats{
		MaxOpenConnections: 10,
		WaitCount:          s.calls,
		WaitDuration:       time.Duration(s.calls) * 100 * time.Millisecond,
	}
}

// syncBuffer guards a bytes.Buffer shared between the monitor goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestMonitorDBPool_LogsWaitsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitorDBPool(ctx, logger, &growingStats{}, time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Postgres pool wait detected"))
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestMonitorDBPool_NilArgumentsReturnImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	monitorDBPool(context.Background(), nil, &growingStats{}, time.Millisecond)
	monitorDBPool(context.Background(), slog.Default(), nil, time.Millisecond)
}

func TestReportPoolWaits(t *testing.T) {
	tests := []struct {
		name   string
		before sql.DBStats
		after  sql.DBStats
		want   string
	}{
		{
			name:   "no new waits",
			before: sql.DBStats{WaitCount: 3},
			after:  sql.DBStats{WaitCount: 3},
			want:   "",
		},
		{
			name:   "short waits are debug",
			before: sql.DBStats{WaitCount: 1, WaitDuration: time.Millisecond},
			after:  sql.DBStats{WaitCount: 3, WaitDuration: 5 * time.Millisecond},
			want:   "level=DEBUG",
		},
		{
			name:   "long waits are warnings",
			before: sql.DBStats{},
			after:  sql.DBStats{WaitCount: 2, WaitDuration: time.Second},
			want:   "avgWait=500ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			reportPoolWaits(context.Background(), logger, tt.before, tt.after)

			if tt.want == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
