package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

type memDecoder map[string]image.Image

func (d memDecoder) Decode(_ context.Context, url string) (image.Image, error) {
	img, ok := d[url]
	if !ok {
		return nil, fmt.Errorf("no source %q", url)
	}
	return img, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := kitstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	dec := memDecoder{"logo.png": imaging.New(32, 32, color.NRGBA{R: 255, A: 255})}
	comp := compose.New(dec, compose.WithMapper(canvas.NewMapper(800, 600)))
	orch := batch.New(comp)

	srv := httptest.NewServer(NewServer(store, comp, orch).Handler())
	t.Cleanup(srv.Close)
	return srv
}

const kitJSON = `[{"id":"el-1","type":"logo","sourceUrl":"logo.png","position":{"x":400,"y":300},"scale":1,"rotationDeg":0,"opacity":1}]`

func putKit(t *testing.T, srv *httptest.Server, userID, body string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/kits/"+userID, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT kit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT kit status = %d, want 204", resp.StatusCode)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestKitRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	putKit(t, srv, "alice", kitJSON)

	resp, err := http.Get(srv.URL + "/v1/kits/alice")
	if err != nil {
		t.Fatalf("GET kit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET kit status = %d", resp.StatusCode)
	}
	var elements []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(elements) != 1 || elements[0]["id"] != "el-1" {
		t.Errorf("kit = %v", elements)
	}
}

func TestGetKit_NotFound(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/kits/nobody")
	if err != nil {
		t.Fatalf("GET kit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload.Error.Code != "KIT_NOT_FOUND" {
		t.Errorf("error code = %q", payload.Error.Code)
	}
}

func TestPutKit_RejectsInvalid(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/v1/kits/alice", strings.NewReader(`not json`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT kit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestComposite(t *testing.T) {
	srv := newTestServer(t)
	putKit(t, srv, "alice", kitJSON)

	resp, err := http.Post(srv.URL+"/v1/kits/alice/composite", "image/png", bytes.NewReader(encodePNG(t, 100, 100)))
	if err != nil {
		t.Fatalf("POST composite: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	img, err := imaging.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("result width = %d", img.Bounds().Dx())
	}
}

func TestComposite_NoKitStillWorks(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/kits/nobody/composite", "image/png", bytes.NewReader(encodePNG(t, 50, 50)))
	if err != nil {
		t.Fatalf("POST composite: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for user without a kit", resp.StatusCode)
	}
}

func TestComposite_BadImage(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/kits/alice/composite", "image/png", strings.NewReader("not an image"))
	if err != nil {
		t.Fatalf("POST composite: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBatch(t *testing.T) {
	srv := newTestServer(t)
	putKit(t, srv, "alice", kitJSON)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"a.png", "b.png"} {
		fw, err := mw.CreateFormFile(batchFormField, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(encodePNG(t, 64, 64))
	}
	fw, _ := mw.CreateFormFile(batchFormField, "broken.png")
	fw.Write([]byte("garbage"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/v1/kits/alice/batch", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST batch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var results []batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "ok" || len(results[0].Image) == 0 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[2].Status != "failed" || results[2].Code != "TARGET_DECODE" {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestBatch_TooManyImages(t *testing.T) {
	srv := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	png := encodePNG(t, 8, 8)
	for i := 0; i < 11; i++ {
		fw, _ := mw.CreateFormFile(batchFormField, fmt.Sprintf("img-%d.png", i))
		fw.Write(png)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/v1/kits/alice/batch", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST batch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
