// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

/*
Package client implements the authenticated UniFi controller session client.

A Client owns one logged-in controller session (cookie state) and exposes a
typed method per endpoint. Every operation is a single synchronous
request-response exchange: non-200 statuses surface immediately as
*RequestError with no retry of any kind.

At construction the client logs in (POST /api/login) and, when enabled,
makes one best-effort attempt to resolve the DPI name tables through the
dpi.Resolver; the resolved tables are cached for the client's lifetime and
applied to the two DPI statistics endpoint families. A resolution failure is
logged and tolerated — the client stays usable, DPI responses simply keep
their raw numeric identifiers.

Thread Safety: the session cookie state is a single mutable resource owned
by the Client. The Client performs no internal locking; hosts that share one
Client across goroutines must synchronize externally.
*/
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dpiscope/dpiscope/internal/config"
	"github.com/dpiscope/dpiscope/internal/dpi"
	"github.com/dpiscope/dpiscope/internal/metrics"
	"github.com/dpiscope/dpiscope/internal/models"
	"github.com/dpiscope/dpiscope/internal/schema"
)

// DefaultSite is the site name every controller ships with.
const DefaultSite = "default"

// loginPath is the fixed login exchange path.
const loginPath = "/api/login"

// maxErrorBodySize limits the response body read for error reporting.
// Prevents unbounded allocation when a proxy returns a large error page.
const maxErrorBodySize = 64 * 1024 // 64KB

// Client is an authenticated UniFi controller API session.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	schemas         *schema.Registry
	validateSchemas bool

	// names holds the resolved DPI name tables, nil when resolution was
	// disabled or failed. Immutable after construction.
	names *dpi.NameTable
}

// New logs in to the controller and returns a ready Client.
//
// cfg.URI, when set, takes precedence and is decomposed into base URL and
// credentials. A non-200 login response returns *AuthenticationError. When
// cfg.ResolveDPINames is set, one best-effort name-table resolution is
// attempted; its *dpi.ResolutionError is logged and swallowed.
func New(ctx context.Context, cfg config.ControllerConfig, logger zerolog.Logger) (*Client, error) {
	baseURL, username, password := cfg.URL, cfg.Username, cfg.Password
	if cfg.URI != "" {
		var err error
		baseURL, username, password, err = config.ParseControllerURI(cfg.URI)
		if err != nil {
			return nil, err
		}
	}
	if baseURL == "" {
		return nil, fmt.Errorf("controller URL is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SkipTLSVerify {
		// Controllers ship with self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit operator opt-out
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   timeout,
		},
		log:             logger.With().Str("component", "unifi-client").Logger(),
		validateSchemas: cfg.ValidateSchemas,
	}

	if cfg.ValidateSchemas {
		registry, err := schema.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("loading response schemas: %w", err)
		}
		c.schemas = registry
	}

	if err := c.login(ctx, username, password); err != nil {
		return nil, err
	}

	if cfg.ResolveDPINames {
		resolver := dpi.NewScriptResolver(baseURL, c.http, logger)
		table, err := resolver.Resolve(ctx)
		if err != nil {
			var resErr *dpi.ResolutionError
			if !errors.As(err, &resErr) {
				return nil, err
			}
			// Best-effort only: stay usable without annotation capability.
			c.log.Info().Err(err).Msg("could not resolve DPI name tables, DPI stats will carry raw ids")
		} else {
			c.names = table
		}
	}

	return c, nil
}

// login performs the credential exchange. Exactly 200 is success.
func (c *Client) login(ctx context.Context, username, password string) error {
	loginURL := c.baseURL + loginPath
	c.log.Debug().Str("url", loginURL).Msg("logging in to controller")

	credentials := map[string]string{"username": username, "password": password}
	body, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveControllerRequest(loginPath, http.MethodPost, resp.StatusCode, time.Since(start))

	// Drain so the connection is reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))

	if resp.StatusCode != http.StatusOK {
		err := &AuthenticationError{URL: loginURL, StatusCode: resp.StatusCode}
		c.log.Error().Err(err).Msg("login failed")
		return err
	}

	c.log.Debug().Msg("logged in to controller")
	return nil
}

// NameTable returns the resolved DPI name tables, or nil when resolution was
// disabled or failed.
func (c *Client) NameTable() *dpi.NameTable {
	return c.names
}

// BaseURL returns the controller base URL (scheme://host[:port]).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request and returns the raw response body and status code.
// Network-level failures are returned as-is; status handling is the
// caller's (via checkStatus).
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding %s request body: %w", path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveControllerRequest(path, method, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading %s response: %w", path, err)
	}
	return body, resp.StatusCode, nil
}

// checkStatus enforces the 200-only contract shared by every endpoint.
func (c *Client) checkStatus(path string, status int) error {
	if status == http.StatusOK {
		return nil
	}
	err := &RequestError{Endpoint: path, StatusCode: status, Expected: http.StatusOK}
	c.log.Error().Err(err).Msg("controller request failed")
	return err
}

// validateBody checks the raw response against the endpoint descriptor when
// schema validation is enabled. An empty descriptor skips validation (some
// endpoints have no published shape yet).
func (c *Client) validateBody(descriptor string, body []byte) error {
	if !c.validateSchemas || c.schemas == nil || descriptor == "" {
		return nil
	}
	return c.schemas.Validate(descriptor, body)
}

// getEnvelope performs a GET and decodes the {meta, data} envelope.
func getEnvelope[T any](ctx context.Context, c *Client, path, descriptor string) (*models.Envelope[T], error) {
	return doEnvelope[T](ctx, c, http.MethodGet, path, descriptor, nil)
}

// postEnvelope performs a POST and decodes the {meta, data} envelope.
func postEnvelope[T any](ctx context.Context, c *Client, path, descriptor string, payload any) (*models.Envelope[T], error) {
	return doEnvelope[T](ctx, c, http.MethodPost, path, descriptor, payload)
}

func doEnvelope[T any](ctx context.Context, c *Client, method, path, descriptor string, payload any) (*models.Envelope[T], error) {
	body, status, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(path, status); err != nil {
		return nil, err
	}
	if err := c.validateBody(descriptor, body); err != nil {
		return nil, err
	}

	var envelope models.Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return &envelope, nil
}

// sitePath builds the per-site endpoint prefix.
func sitePath(site, suffix string) string {
	return "/api/s/" + site + "/" + suffix
}
