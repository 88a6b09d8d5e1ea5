// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dpiscope/dpiscope/internal/config"
	"github.com/dpiscope/dpiscope/internal/schema"
)

// newTestClient builds a logged-in client against an httptest server. The
// login handler is registered here so individual tests only describe the
// endpoints they exercise.
func newTestClient(t *testing.T, mux *http.ServeMux, cfg config.ControllerConfig) (*Client, *httptest.Server) {
	t.Helper()

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg.URL = server.URL
	if cfg.Username == "" {
		cfg.Username = "admin"
		cfg.Password = "secret"
	}

	c, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, server
}

func TestNewSendsCredentials(t *testing.T) {
	t.Parallel()

	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("login body is not JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("login Content-Type = %q", ct)
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := New(context.Background(), config.ControllerConfig{
		URL:      server.URL,
		Username: "admin",
		Password: "s3cret",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got["username"] != "admin" || got["password"] != "s3cret" {
		t.Errorf("credentials sent = %v", got)
	}
}

func TestNewDecomposesURI(t *testing.T) {
	t.Parallel()

	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// Percent-encoded password in the URI arrives decoded at the controller.
	uri := "http://admin:p%40ss@" + server.Listener.Addr().String()
	c, err := New(context.Background(), config.ControllerConfig{URI: uri}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got["username"] != "admin" || got["password"] != "p@ss" {
		t.Errorf("credentials sent = %v", got)
	}
	if c.BaseURL() != server.URL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), server.URL)
	}
}

func TestNewLoginFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(context.Background(), config.ControllerConfig{
		URL:      server.URL,
		Username: "admin",
		Password: "wrong",
	}, zerolog.Nop())

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthenticationError, got %T: %v", err, err)
	}
	if authErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", authErr.StatusCode, http.StatusBadRequest)
	}
}

func TestNewVerifiesTLSByDefault(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// The server certificate is self-signed; a zero-value config must refuse
	// it rather than hand credentials to an unverified peer.
	_, err := New(context.Background(), config.ControllerConfig{
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	}, zerolog.Nop())
	if err == nil {
		t.Fatal("login over an untrusted certificate should fail")
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		t.Fatalf("connection should fail before the credential exchange, got %v", err)
	}

	// The explicit opt-out accepts the same certificate.
	c, err := New(context.Background(), config.ControllerConfig{
		URL:           server.URL,
		Username:      "admin",
		Password:      "secret",
		SkipTLSVerify: true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() with SkipTLSVerify error: %v", err)
	}
	if c.BaseURL() != server.URL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), server.URL)
	}
}

func TestNewMissingControllerURL(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), config.ControllerConfig{}, zerolog.Nop()); err == nil {
		t.Error("expected error for empty controller URL")
	}
}

func TestNewToleratesResolutionFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	// No /manage handlers at all: build id discovery finds nothing.
	c, _ := newTestClient(t, mux, config.ControllerConfig{ResolveDPINames: true})

	if c.NameTable() != nil {
		t.Error("NameTable() should be nil after failed resolution")
	}
}

func TestGetSitesDecodesEnvelope(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/self/sites", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		fmt.Fprint(w, `{"meta":{"rc":"ok"},"data":[{"_id":"abc","name":"default","desc":"Default"}]}`)
	})
	c, _ := newTestClient(t, mux, config.ControllerConfig{})

	sites, err := c.GetSites(context.Background())
	if err != nil {
		t.Fatalf("GetSites() error: %v", err)
	}
	if sites.Meta.RC != "ok" {
		t.Errorf("Meta.RC = %q, want %q", sites.Meta.RC, "ok")
	}
	if len(sites.Data) != 1 || sites.Data[0].Name != "default" || sites.Data[0].Description != "Default" {
		t.Errorf("Data = %+v", sites.Data)
	}
}

func TestEndpointRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
	}{
		{
			name:       "self",
			call:       func(c *Client) error { _, err := c.GetSelf(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/self",
		},
		{
			name:       "site stats",
			call:       func(c *Client) error { _, err := c.GetSiteStats(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/stat/sites",
		},
		{
			name:       "devices default site",
			call:       func(c *Client) error { _, err := c.GetDevicesDefaultSite(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/s/default/stat/device",
		},
		{
			name:       "active clients",
			call:       func(c *Client) error { _, err := c.GetActiveClients(context.Background(), "home"); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/s/home/stat/sta",
		},
		{
			name:       "known clients",
			call:       func(c *Client) error { _, err := c.GetKnownClients(context.Background(), "home"); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/s/home/rest/user",
		},
		{
			name:       "dynamic dns",
			call:       func(c *Client) error { _, err := c.GetDDNSInfo(context.Background(), "home"); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/s/home/stat/dynamicdns",
		},
		{
			name:       "events",
			call:       func(c *Client) error { _, err := c.GetEvents(context.Background(), "home"); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/s/home/stat/event",
		},
		{
			name:       "alarms",
			call:       func(c *Client) error { _, err := c.GetAlarms(context.Background(), "home"); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/s/home/stat/alarm",
		},
		{
			name:       "speed test start",
			call:       func(c *Client) error { _, err := c.RunSpeedTest(context.Background(), "home"); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/s/home/cmd/devmgr",
		},
		{
			name:       "speed test status",
			call:       func(c *Client) error { _, err := c.SpeedTestStatus(context.Background(), "home"); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/s/home/cmd/devmgr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotMethod, gotPath string
			mux := http.NewServeMux()
			mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/login" {
					w.WriteHeader(http.StatusOK)
					return
				}
				gotMethod, gotPath = r.Method, r.URL.Path
				fmt.Fprint(w, `{"meta":{"rc":"ok"},"data":[]}`)
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			c, err := New(context.Background(), config.ControllerConfig{
				URL: server.URL, Username: "admin", Password: "secret",
			}, zerolog.Nop())
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			if err := tt.call(c); err != nil {
				t.Fatalf("call error: %v", err)
			}
			if gotMethod != tt.wantMethod || gotPath != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", gotMethod, gotPath, tt.wantMethod, tt.wantPath)
			}
		})
	}
}

func TestRequestErrorOnNon200(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/s/default/stat/device", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c, _ := newTestClient(t, mux, config.ControllerConfig{})

	_, err := c.GetDevices(context.Background(), DefaultSite)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusInternalServerError || reqErr.Expected != http.StatusOK {
		t.Errorf("RequestError = %+v", reqErr)
	}
	if reqErr.Endpoint != "/api/s/default/stat/device" {
		t.Errorf("Endpoint = %q", reqErr.Endpoint)
	}
}

func TestSchemaValidationRejectsMalformedResponse(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/self/sites", func(w http.ResponseWriter, _ *http.Request) {
		// data must be an array of objects.
		fmt.Fprint(w, `{"meta":{"rc":"ok"},"data":"oops"}`)
	})
	c, _ := newTestClient(t, mux, config.ControllerConfig{ValidateSchemas: true})

	_, err := c.GetSites(context.Background())
	var schemaErr *schema.ValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *schema.ValidationError, got %T: %v", err, err)
	}
}

func TestSchemaValidationDisabledByDefault(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/self/sites", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"meta":{"rc":"ok"},"data":[]}`)
	})
	c, _ := newTestClient(t, mux, config.ControllerConfig{})

	if _, err := c.GetSites(context.Background()); err != nil {
		t.Fatalf("GetSites() error: %v", err)
	}
}

func TestTimeRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		make  func() TimeRange
		width time.Duration
	}{
		{name: "last thirty minutes", make: LastThirtyMinutes, width: 30 * time.Minute},
		{name: "last hour", make: LastHour, width: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := tt.make()
			if got := r.End - r.Start; got != tt.width.Milliseconds() {
				t.Errorf("window width = %dms, want %dms", got, tt.width.Milliseconds())
			}
			now := time.Now().UTC().Unix() * 1000
			if r.End > now || now-r.End > 5000 {
				t.Errorf("End = %d is not close to now (%d)", r.End, now)
			}
			start, end := r.Bounds()
			if *start != r.Start || *end != r.End {
				t.Errorf("Bounds() = %d, %d", *start, *end)
			}
		})
	}
}
