package imgsrc

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/brandkit/pkg/cache"
	"github.com/matzehuels/brandkit/pkg/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestFetcher_RemoteWithCache(t *testing.T) {
	var hits atomic.Int32
	png := pngBytes(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(png)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	f := NewFetcher(fc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(ctx, srv.URL+"/logo.png")
		if err != nil {
			t.Fatalf("Fetch error: %v", err)
		}
		if !bytes.Equal(data, png) {
			t.Fatal("fetched bytes differ from served bytes")
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (cache)", got)
	}
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	png := pngBytes(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write(png)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch error after retries: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Error("fetched bytes differ after retry")
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}

func TestFetcher_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Fetch(404) error = %v, want NETWORK_ERROR", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", calls.Load())
	}
}

func TestFetcher_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	png := pngBytes(t, 8, 8)
	if err := os.WriteFile(path, png, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f := NewFetcher(nil)
	data, err := f.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch(local) error: %v", err)
	}
	if !bytes.Equal(data, png) {
		t.Error("local bytes differ")
	}

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "nope.png"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Fetch(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDecoder_NativeSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(path, pngBytes(t, 123, 45), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d := NewDecoder(NewFetcher(nil))

	if _, _, ok := d.NativeSize(path); ok {
		t.Error("NativeSize known before any decode")
	}

	if errs := d.Measure(context.Background(), path); len(errs) != 0 {
		t.Fatalf("Measure errors: %v", errs)
	}

	w, h, ok := d.NativeSize(path)
	if !ok || w != 123 || h != 45 {
		t.Errorf("NativeSize = (%d,%d,%v), want (123,45,true)", w, h, ok)
	}
}

func TestDecoder_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d := NewDecoder(NewFetcher(nil))
	_, err := d.Decode(context.Background(), path)
	if !errors.Is(err, errors.ErrCodeElementDecode) {
		t.Errorf("Decode(garbage) error = %v, want ELEMENT_DECODE", err)
	}

	errs := d.Measure(context.Background(), path)
	if len(errs) != 1 {
		t.Errorf("Measure collected %d errors, want 1", len(errs))
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return errors.New(errors.ErrCodeInvalidSource, "permanent")
	})
	if err == nil {
		t.Fatal("Retry returned nil for permanent failure")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetry_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "flaky")}
	})
	if err != context.Canceled {
		t.Errorf("Retry(cancelled) error = %v, want context.Canceled", err)
	}
}
