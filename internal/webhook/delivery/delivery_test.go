package delivery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDeliverSuccess(t *testing.T) {
	var gotBody []byte
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDelivery(zap.NewNop(), 0, time.Second)
	err := d.Deliver(context.Background(), srv.URL, "", map[string]interface{}{"event_type": "message"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if gotUA != "ZapHub/1.0" {
		t.Fatalf("user-agent = %q", gotUA)
	}
	if len(gotBody) == 0 {
		t.Fatal("empty body delivered")
	}
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("retry sent empty body")
		}
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDelivery(zap.NewNop(), 3, time.Second)
	if err := d.Deliver(context.Background(), srv.URL, "", map[string]interface{}{"k": "v"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDeliverGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDelivery(zap.NewNop(), 1, time.Second)
	if err := d.Deliver(context.Background(), srv.URL, "", map[string]interface{}{}); err == nil {
		t.Fatal("expected failure")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDeliverSignsPayload(t *testing.T) {
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-ZapHub-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDelivery(zap.NewNop(), 0, time.Second)
	if err := d.Deliver(context.Background(), srv.URL, "segredo", map[string]interface{}{"k": "v"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if gotSig == "" {
		t.Fatal("missing signature header")
	}
	if !d.VerifySignature(gotBody, gotSig, "segredo") {
		t.Fatal("signature does not verify")
	}
	if d.VerifySignature(gotBody, gotSig, "outra") {
		t.Fatal("signature verified with wrong secret")
	}
}
