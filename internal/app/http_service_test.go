package app

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestHTTPServiceServesUntilStopped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"spin_balance":0}`)
	})
	svc := NewHTTPService("127.0.0.1:0", handler)

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	select {
	case <-svc.Ready():
	case err := <-done:
		t.Fatalf("start failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("http service did not become ready")
	}

	resp, err := http.Get("http://" + svc.Addr() + "/hf_toolkit_rest_api/spins_resource/1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != `{"spin_balance":0}` {
		t.Fatalf("unexpected body: %s", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start should return nil after stop, got %v", err)
	}
}
