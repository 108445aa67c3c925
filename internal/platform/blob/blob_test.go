package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"kpiteam/internal/platform/config"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	url, err := store.Put(ctx, "photos/e1.jpg", []byte("abc"), "image/jpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "data:image/jpeg;base64,YWJj" {
		t.Fatalf("unexpected url %q", url)
	}
	data, ct, err := store.Get(ctx, "photos/e1.jpg")
	if err != nil || string(data) != "abc" || ct != "image/jpeg" {
		t.Fatalf("get: %q %q %v", data, ct, err)
	}
	if err := store.Delete(ctx, "photos/e1.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Get(ctx, "photos/e1.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type s3Call struct {
	method string
	path   string
}

func TestS3UsesPathStyleEndpoint(t *testing.T) {
	var mu sync.Mutex
	var calls []s3Call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		calls = append(calls, s3Call{method: r.Method, path: r.URL.Path})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "photos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new s3: %v", err)
	}
	ctx := context.Background()

	url, err := store.Put(ctx, "employees/e1.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != srv.URL+"/photos/employees/e1.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	data, _, err := store.Get(ctx, "employees/e1.jpg")
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("get: %q %v", data, err)
	}
	if err := store.Delete(ctx, "employees/e1.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %+v", calls)
	}
	for _, c := range calls {
		if !strings.HasPrefix(c.path, "/photos/employees/e1.jpg") {
			t.Fatalf("unexpected request path %q", c.path)
		}
	}
	if calls[0].method != http.MethodPut || calls[2].method != http.MethodDelete {
		t.Fatalf("unexpected methods %+v", calls)
	}
}

func TestFromConfig(t *testing.T) {
	store, err := FromConfig(context.Background(), config.Config{PhotoDriver: "memory"})
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("expected memory store, got %v %v", store, err)
	}
	if _, err := FromConfig(context.Background(), config.Config{PhotoDriver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := FromConfig(context.Background(), config.Config{PhotoDriver: "disk"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
