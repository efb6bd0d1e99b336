package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

func TestGetPageBrowserHonorsContext(t *testing.T) {
	bc, err := stealth.NewClient(stealth.WithTimeout(5))
	if err != nil {
		t.Skipf("stealth client unavailable: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := fetcher{browser: bc}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err = f.getPage(ctx, srv.URL, 10*time.Second)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled fetch took %v, must bail out before the request fires", elapsed)
	}
}
