package jobs

import (
	"testing"
	"time"
)

func TestPollLimiter(t *testing.T) {
	current := time.Unix(1000, 0)
	limiter := newPollLimiter(time.Second, func() time.Time { return current })

	if !limiter.Allow("owner-1", "job-1") {
		t.Fatal("first poll must be allowed")
	}
	if limiter.Allow("owner-1", "job-1") {
		t.Fatal("immediate repeat must be blocked")
	}
	if !limiter.Allow("owner-1", "job-2") {
		t.Fatal("different job must not share the window")
	}
	if !limiter.Allow("owner-2", "job-1") {
		t.Fatal("different owner must not share the window")
	}

	current = current.Add(999 * time.Millisecond)
	if limiter.Allow("owner-1", "job-1") {
		t.Fatal("poll inside the window must be blocked")
	}
	current = current.Add(2 * time.Millisecond)
	if !limiter.Allow("owner-1", "job-1") {
		t.Fatal("poll after the window must be allowed")
	}

	if limiter.RetryAfterSeconds() != 1 {
		t.Errorf("expected retry-after 1s, got %d", limiter.RetryAfterSeconds())
	}
}
