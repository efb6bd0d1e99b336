package api

import "testing"

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("burst of 2 must be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third immediate request must be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("limits are per IP, other clients stay unaffected")
	}
}
