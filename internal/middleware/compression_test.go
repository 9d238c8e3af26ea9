// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveCompressed(t *testing.T, acceptEncoding string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	Compression(DefaultMinCompressSize)(h).ServeHTTP(rec, req)
	return rec
}

func gunzip(t *testing.T, body io.Reader) string {
	t.Helper()
	zr, err := gzip.NewReader(body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	return string(out)
}

func TestCompression_LargeBody(t *testing.T) {
	payload := strings.Repeat(`{"name":"Hades","score":93},`, 100)
	rec := serveCompressed(t, "gzip, deflate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		// Several small writes must still cross the threshold together.
		for i := 0; i < len(payload); i += 100 {
			end := i + 100
			if end > len(payload) {
				end = len(payload)
			}
			_, _ = w.Write([]byte(payload[i:end]))
		}
	})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if got := gunzip(t, rec.Body); got != payload {
		t.Errorf("decompressed body differs: %d bytes, want %d", len(got), len(payload))
	}
	if rec.Header().Get("Vary") != "Accept-Encoding" {
		t.Errorf("Vary = %q", rec.Header().Get("Vary"))
	}
}

func TestCompression_SmallBodyUncompressed(t *testing.T) {
	rec := serveCompressed(t, "gzip", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	})

	if rec.Header().Get("Content-Encoding") != "" {
		t.Errorf("small body should not be compressed")
	}
	if rec.Code != http.StatusNotFound || rec.Body.String() != `{"status":"error"}` {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestCompression_HeaderOnly(t *testing.T) {
	rec := serveCompressed(t, "gzip", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestCompression_ClientRefusesGzip(t *testing.T) {
	big := strings.Repeat("x", 4096)
	for _, accept := range []string{"", "deflate", "gzip;q=0", "br"} {
		t.Run(accept, func(t *testing.T) {
			rec := serveCompressed(t, accept, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(big))
			})
			if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != big {
				t.Errorf("Accept-Encoding %q: body was altered", accept)
			}
		})
	}
}

func TestCompression_RespectsHandlerEncoding(t *testing.T) {
	big := strings.Repeat("y", 4096)
	rec := serveCompressed(t, "gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "identity")
		_, _ = w.Write([]byte(big))
	})
	if rec.Header().Get("Content-Encoding") != "identity" || rec.Body.String() != big {
		t.Error("handler-chosen encoding should pass through untouched")
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := map[string]bool{
		"gzip":            true,
		"deflate, gzip":   true,
		"gzip;q=0.5":      true,
		"*":               true,
		"gzip;q=0":        false,
		"identity":        false,
		"":                false,
		"br, deflate":     false,
		" gzip ; q=1, br": true,
	}
	for header, want := range tests {
		if got := acceptsGzip(header); got != want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", header, got, want)
		}
	}
}
