package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postmark/internal/api"
	"postmark/internal/daemon"
	"postmark/internal/logging"
	"postmark/internal/testsupport"
)

func newAPIHandler(t *testing.T) (http.Handler, *daemon.Daemon) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv := daemon.NewAPIServer(cfg, d, logging.NewNop())
	if srv == nil {
		t.Fatal("api server disabled despite bind address")
	}
	return srv.Handler(), d
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAPILoadNavigateAnnotate(t *testing.T) {
	handler, _ := newAPIHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions", map[string]string{
		"archive": testsupport.A1Archive(t),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("load status = %d, body %s", rec.Code, rec.Body.String())
	}
	var summary api.SessionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Records != 1 {
		t.Fatalf("Records = %d", summary.Records)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/current/current", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current status = %d", rec.Code)
	}
	var view api.RecordView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Key != "A1" {
		t.Fatalf("Key = %q", view.Key)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/sessions/current/annotations", map[string]string{
		"label":       "correct",
		"explanation": "ignored for correct",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("annotate status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if !view.Annotated || view.Label != "correct" || view.Explanation != "" {
		t.Fatalf("annotation not applied: %+v", view)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	handler, _ := newAPIHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/missing/current", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/sessions", map[string]string{"archive": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty archive status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/sessions", map[string]string{
		"archive": testsupport.A1Archive(t),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("load status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/sessions/current/annotations", map[string]string{
		"label": "maybe",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad label status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAPIExportStreamsCSV(t *testing.T) {
	handler, _ := newAPIHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions", map[string]string{
		"archive": testsupport.A1Archive(t),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("load status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/current/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "image_key,label,explanation") {
		t.Fatalf("missing header in export: %q", body)
	}
	if !strings.Contains(body, "A1,Not Annotated,") {
		t.Fatalf("missing unannotated row: %q", body)
	}
}

func TestAPIArtifactServesFile(t *testing.T) {
	handler, _ := newAPIHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions", map[string]string{
		"archive": testsupport.A1Archive(t),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("load status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/current/records/A1/artifacts/image", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("artifact status = %d", rec.Code)
	}
	if rec.Body.String() != "img" {
		t.Fatalf("artifact body = %q", rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/current/records/Z9/artifacts/image", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing record status = %d", rec.Code)
	}
}
