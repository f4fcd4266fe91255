package pathstore

import (
	"context"
	"errors"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/scoregest/internal/sheet"
)

// memStore is an in-memory stand-in for the pathstore /kv API.
type memStore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  []string
}

func newMemStore() *memStore { return &memStore{nodes: make(map[string]json.RawMessage)} }

func (m *memStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = append(m.auth, r.Header.Get("Authorization"))
	key := strings.TrimPrefix(r.URL.Path, "/kv/")

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		v, ok := m.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	case http.MethodDelete:
		for k := range m.nodes {
			if k == key || (r.URL.Query().Get("children") == "true" && strings.HasPrefix(k, key+"/")) {
				delete(m.nodes, k)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestClientRoundTrip(t *testing.T) {
	store := newMemStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	defer c.Close()
	ctx := context.Background()

	if err := c.PutNode(ctx, "skating/a/1", NodeRequest{Value: map[string]int{"n": 1}}); err != nil {
		t.Fatalf("PutNode: %v", err)
	}
	if err := c.PutNode(ctx, "skating/a/2", NodeRequest{Value: map[string]int{"n": 2}}); err != nil {
		t.Fatalf("PutNode: %v", err)
	}

	node, err := c.GetNode(ctx, "skating/a/2")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if node == nil || string(node.Value) != `{"n":2}` {
		t.Fatalf("node = %+v", node)
	}

	if err := c.DeleteTree(ctx, "skating/a"); err != nil {
		t.Fatalf("DeleteTree: %v", err)
	}
	node, err = c.GetNode(ctx, "skating/a/1")
	if err != nil || node != nil {
		t.Fatalf("after delete: node = %+v, err = %v", node, err)
	}

	for _, a := range store.auth {
		if a != "Bearer secret" {
			t.Errorf("Authorization = %q", a)
		}
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	ctx := context.Background()
	if err := c.PutNode(ctx, "x", NodeRequest{Value: 1}); err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("PutNode err = %v", err)
	}
	_, err := c.GetNode(ctx, "x")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("GetNode err = %v, want *StatusError with code 500", err)
	}
	if err := c.DeleteTree(ctx, "x"); err == nil {
		t.Error("DeleteTree: expected error")
	}
}

func TestKeys(t *testing.T) {
	pctx := sheet.ParseContext{Season: "2021-2022", Competition: "Critérium  Nantes / Rezé"}
	pdf := PDFKey(pctx, "scores/NOVADAMES-FS.pdf")
	if want := "skating/2021-2022/criterium-nantes-reze/novadames-fs"; pdf != want {
		t.Errorf("PDFKey = %q, want %q", pdf, want)
	}
	if got := PerformanceKey(pdf, 7); got != pdf+"/007" {
		t.Errorf("PerformanceKey = %q", got)
	}
	if got := HashKey("abc"); got != "skating/by_hash/abc" {
		t.Errorf("HashKey = %q", got)
	}
	if got := PDFKey(sheet.ParseContext{}, "x.pdf"); got != "skating/unknown/unknown/x" {
		t.Errorf("empty context PDFKey = %q", got)
	}
}
