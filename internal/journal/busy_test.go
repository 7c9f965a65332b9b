package journal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("other"), false},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{errors.New("SQLITE_BUSY"), true},
		{errors.New("database is locked"), true},
	}
	for _, tt := range tests {
		if got := IsBusy(tt.err); got != tt.want {
			t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRetryOnBusy_success(t *testing.T) {
	n := 0
	err := retryOnBusy(context.Background(), 3, time.Millisecond, func() error {
		n++
		if n < 2 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Errorf("retryOnBusy: %v", err)
	}
	if n != 2 {
		t.Errorf("fn called %d times, want 2", n)
	}
}

func TestRetryOnBusy_nonBusyReturnsImmediately(t *testing.T) {
	want := errors.New("other error")
	n := 0
	err := retryOnBusy(context.Background(), 5, time.Millisecond, func() error {
		n++
		return want
	})
	if err != want || n != 1 {
		t.Errorf("retryOnBusy = %v after %d calls, want %v after 1", err, n, want)
	}
}

func TestRetryOnBusy_exhausted(t *testing.T) {
	n := 0
	err := retryOnBusy(context.Background(), 3, time.Millisecond, func() error {
		n++
		return errors.New("SQLITE_BUSY")
	})
	if !IsBusy(err) {
		t.Errorf("retryOnBusy = %v, want last busy error", err)
	}
	if n != 3 {
		t.Errorf("fn called %d times, want 3", n)
	}
}

func TestRetryOnBusy_contextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryOnBusy(ctx, 5, 10*time.Second, func() error {
		return errors.New("database is locked (SQLITE_BUSY)")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retryOnBusy = %v, want context.Canceled", err)
	}
}
