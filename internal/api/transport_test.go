package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmeshcher/storefront-client/internal/prompts"
	"github.com/mmeshcher/storefront-client/internal/storage"
)

func newTestClient(t *testing.T, handler http.Handler, store storage.Storage, host *prompts.Host) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	transport := NewFaultTransport(nil, store, host)
	return NewClient(ts.URL, time.Second, transport)
}

func TestFaultTransport_AttachesBearer(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	store := storage.NewMemoryStorage()
	store.Set(storage.KeyToken, "abc.def.ghi")

	client := newTestClient(t, handler, store, prompts.NewHost(nil, nil))

	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("Products error: %v", err)
	}
	if gotAuth != "Bearer abc.def.ghi" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestFaultTransport_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	})

	client := newTestClient(t, handler, storage.NewMemoryStorage(), prompts.NewHost(nil, nil))

	if _, err := client.Products(context.Background()); err != nil {
		t.Fatalf("Products error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty", gotAuth)
	}
}

func TestFaultTransport_TokenFault(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"title":"Unauthorized","detail":"token expired"}`))
	})

	store := storage.NewMemoryStorage()
	store.Set(storage.KeyToken, "stale")
	host := prompts.NewHost(nil, nil)

	client := newTestClient(t, handler, store, host)

	_, err := client.Products(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if _, ok := store.Get(storage.KeyToken); ok {
		t.Fatalf("token must be removed on token fault")
	}
	if !host.Active(prompts.KindSessionExpired) {
		t.Fatalf("session expired prompt must be shown")
	}
}

func TestFaultTransport_Consecutive401_OnePrompt(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"detail":"invalid token"}`))
	})

	shown := 0
	presenter := countingPresenter{onShow: func() { shown++ }}
	host := prompts.NewHost(&presenter, nil)

	client := newTestClient(t, handler, storage.NewMemoryStorage(), host)

	client.Products(context.Background())
	client.Products(context.Background())

	if shown != 1 {
		t.Fatalf("shown %d prompts, want 1", shown)
	}
}

func TestFaultTransport_401WithoutMarkers_NoPrompt(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"detail":"bad credentials"}`))
	})

	store := storage.NewMemoryStorage()
	store.Set(storage.KeyToken, "kept")
	host := prompts.NewHost(nil, nil)

	client := newTestClient(t, handler, store, host)
	client.Products(context.Background())

	if _, ok := store.Get(storage.KeyToken); !ok {
		t.Fatalf("token must be kept without token markers")
	}
	if host.Active(prompts.KindSessionExpired) {
		t.Fatalf("prompt must not be shown without token markers")
	}
}

func TestFaultTransport_Forbidden(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"title":"Forbidden","detail":"admin role required"}`))
	})

	host := prompts.NewHost(nil, nil)
	client := newTestClient(t, handler, storage.NewMemoryStorage(), host)

	_, err := client.AllUsers(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}
	if !host.Active(prompts.KindForbidden) {
		t.Fatalf("forbidden prompt must be shown")
	}
	if host.Active(prompts.KindSessionExpired) {
		t.Fatalf("session expired prompt must not be shown on 403")
	}
}

type countingPresenter struct {
	onShow func()
}

func (c *countingPresenter) Show(*prompts.Prompt) {
	if c.onShow != nil {
		c.onShow()
	}
}

func (c *countingPresenter) Hide(*prompts.Prompt) {}
