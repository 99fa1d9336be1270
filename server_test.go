package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func newTestApp(t *testing.T) (*fiber.App, *DesignStore, string) {
	t.Helper()
	store := openTestStore(t)
	fontDir := t.TempDir()
	svc := NewService(store, NewFontBook(fontDir), fontDir)
	cfg := defaultConfig().Server
	return newApp(cfg, svc), store, fontDir
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestHealthRoute(t *testing.T) {
	app, _, _ := newTestApp(t)
	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil || got["status"] != "ok" {
		t.Errorf("unexpected body %s", body)
	}
}

func TestFontRoutes(t *testing.T) {
	app, _, fontDir := newTestApp(t)
	if err := os.WriteFile(filepath.Join(fontDir, "Inter-Bold.ttf"), []byte("fake font"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/fonts", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("manifest: expected 200, got %d", resp.StatusCode)
	}
	var manifest []FontInfo
	if err := json.Unmarshal(body, &manifest); err != nil {
		t.Fatalf("manifest json: %v", err)
	}
	if len(manifest) != 1 || manifest[0].Family != "Inter" || manifest[0].Weights[0] != "Bold" {
		t.Errorf("unexpected manifest %+v", manifest)
	}

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/fonts/Inter-Bold.ttf", nil))
	if resp.StatusCode != http.StatusOK || string(body) != "fake font" {
		t.Errorf("font file: status %d body %q", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/fonts/download/Inter/Bold", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("download: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/fonts/download/Inter/Thin", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing weight: expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/fonts/..%2Fsecret.ttf", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("escaping path: expected 404, got %d", resp.StatusCode)
	}
}

func TestRenderRoute(t *testing.T) {
	app, _, _ := newTestApp(t)
	d := NewDesign("r")
	d.Canvas.Width, d.Canvas.Height = 40, 30
	var body bytes.Buffer
	if err := EncodeDesign(&body, d); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/render", &body)
	req.Header.Set("Content-Type", "application/json")
	resp, out := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, out)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("unexpected size %v", img.Bounds())
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewBufferString("{")))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad payload: expected 400, got %d", resp.StatusCode)
	}
}

func TestDesignRoutes(t *testing.T) {
	app, store, _ := newTestApp(t)

	var body bytes.Buffer
	if err := EncodeDesign(&body, sampleDesign()); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/designs", &body)
	req.Header.Set("Content-Type", "application/json")
	resp, out := doRequest(t, app, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, out)
	}
	var created map[string]string
	if err := json.Unmarshal(out, &created); err != nil || created["id"] == "" {
		t.Fatalf("create response %s", out)
	}
	id := created["id"]

	resp, out = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/designs", nil))
	var list []DesignSummary
	if err := json.Unmarshal(out, &list); err != nil || len(list) != 1 || list[0].ID != id {
		t.Errorf("list: status %d body %s", resp.StatusCode, out)
	}

	resp, out = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/designs/"+id, nil))
	got, err := DecodeDesign(bytes.NewReader(out))
	if resp.StatusCode != http.StatusOK || err != nil || len(got.Shapes) != 3 {
		t.Errorf("get: status %d err %v", resp.StatusCode, err)
	}

	resp, out = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/designs/"+id+"/png", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("png: expected 200, got %d", resp.StatusCode)
	} else if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("png: %v", err)
	}

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodDelete, "/api/designs/"+id, nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}
	if _, err := store.Get(context.Background(), id); err == nil {
		t.Errorf("design still stored after delete")
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/designs/"+id, nil),
		httptest.NewRequest(http.MethodGet, "/api/designs/"+id+"/png", nil),
		httptest.NewRequest(http.MethodDelete, "/api/designs/"+id, nil),
	} {
		if resp, _ := doRequest(t, app, req); resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, resp.StatusCode)
		}
	}
}

func TestMissingDesignReturnsJSONError(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, path := range []string{"/api/designs/nope", "/api/designs/nope/png"} {
		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
			continue
		}
		var got map[string]string
		if err := json.Unmarshal(body, &got); err != nil || got["error"] != "design not found" {
			t.Errorf("%s: expected json error body, got %s", path, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct == "image/png" {
			t.Errorf("%s: error response sent as png", path)
		}
	}
}
