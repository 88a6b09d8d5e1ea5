// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package dpi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/ditashi/jsbeautifier-go/jsbeautifier"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dpiscope/dpiscope/internal/metrics"
)

// ResolutionError is the single error kind for every name-table resolution
// failure: script discovery, fetch, extraction and parsing. Callers doing
// best-effort resolution catch this kind specifically (errors.As) and
// proceed without name tables.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return "dpi resolution: " + e.Reason + ": " + e.Err.Error()
	}
	return "dpi resolution: " + e.Reason
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func resolutionErrorf(err error, format string, args ...any) *ResolutionError {
	return &ResolutionError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// Doer executes a single HTTP request. Satisfied by *http.Client; the
// resolver shares the client's authenticated session.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver recovers the DPI name tables. The discovery+parsing strategy is
// deliberately pluggable: it depends on an undocumented, versioned asset
// layout, and a controller firmware change should only require swapping the
// strategy, not the client.
type Resolver interface {
	Resolve(ctx context.Context) (*NameTable, error)
}

// buildIDPattern scans the login page markup for front-end asset paths of
// the form .../angular/<build-id>/js/ and captures the build id.
var buildIDPattern = regexp.MustCompile(`angular/([a-zA-Z0-9.]*)/js/`)

// tablePattern extracts the two name-table object literals from the
// normalized classification script. It anchors on the "categories:" and
// "applications:" tokens and on the "}, {}]," sequence that closes the first
// table group before the next index key in the known script layout.
//
// This is the single most fragile contract in the system: it depends on the
// literal textual layout of a minified third-party script after
// normalization. When a firmware update changes the layout, this pattern is
// what needs to be revised.
var tablePattern = regexp.MustCompile(`(?s)categories:\s*(.*?\}\s*\}),.*?applications:\s*(.*?\}\s*\})\s*\}, \{\}\],\s*2:`)

// looseColonPattern reintroduces the "key: value" spacing that YAML flow
// mappings require but minification strips (e.g. name:"Skype").
var looseColonPattern = regexp.MustCompile(`([{,]\s*)("?[A-Za-z0-9_.-]+"?):(\S)`)

// ScriptResolver is the production Resolver. It locates the controller's
// traffic-classification script through the login page, normalizes the
// minified source and extracts the two name tables.
//
// Candidate build ids are tried in nondeterministic (set) order; the loop
// short-circuits on the first hit, so a controller serving multiple
// simultaneous build ids resolves to whichever script answers first.
type ScriptResolver struct {
	baseURL string
	session Doer
	log     zerolog.Logger

	// candidates overrides login-page discovery when non-empty.
	candidates []string

	// normalize is the code-formatting pass applied to the fetched script
	// before extraction. Defaults to a jsbeautifier pass; injectable so
	// tests can feed pre-normalized bodies.
	normalize func(src string) (string, error)
}

// NewScriptResolver builds a resolver that shares the given authenticated
// session. Candidate build ids, when supplied, skip login-page discovery.
func NewScriptResolver(baseURL string, session Doer, logger zerolog.Logger, candidates ...string) *ScriptResolver {
	return &ScriptResolver{
		baseURL:    baseURL,
		session:    session,
		log:        logger.With().Str("component", "dpi-resolver").Logger(),
		candidates: candidates,
		normalize:  beautifyScript,
	}
}

// beautifyScript reindents the minified script. The extraction pattern
// depends on whitespace structure that only exists after this pass.
func beautifyScript(src string) (string, error) {
	pretty, err := jsbeautifier.Beautify(&src, jsbeautifier.DefaultOptions())
	if err != nil {
		return "", err
	}
	return pretty, nil
}

// Resolve implements Resolver. It performs at most one login-page GET plus
// one script GET per candidate build id, then extracts and parses the two
// tables. Every failure mode returns a *ResolutionError.
func (r *ScriptResolver) Resolve(ctx context.Context) (*NameTable, error) {
	candidates := r.candidates
	if len(candidates) == 0 {
		discovered, err := r.discoverBuildIDs(ctx)
		if err != nil {
			metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
			return nil, err
		}
		candidates = discovered
	}

	// De-duplicate; iteration order over the set is not guaranteed stable,
	// which is acceptable since the loop stops at the first hit.
	set := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		set[c] = struct{}{}
	}

	var script string
	found := false
	for build := range set {
		scriptURL := fmt.Sprintf("%s/manage/angular/%s/js/dynamic.dpi.js", r.baseURL, build)
		body, status, err := r.get(ctx, scriptURL)
		if err != nil {
			metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
			return nil, resolutionErrorf(err, "fetching classification script %s", scriptURL)
		}
		if status != http.StatusOK {
			// A miss, not an error: stale build ids 404.
			r.log.Debug().Str("url", scriptURL).Int("status", status).Msg("classification script miss")
			metrics.ResolverAttempts.WithLabelValues(metrics.ResolverMiss).Inc()
			continue
		}
		r.log.Debug().Str("url", scriptURL).Msg("classification script found")
		script = body
		found = true
		break
	}
	if !found {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, resolutionErrorf(nil, "no candidate build id yielded the classification script (tried %d)", len(set))
	}

	normalized, err := r.normalize(script)
	if err != nil {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, resolutionErrorf(err, "normalizing classification script")
	}

	catSrc, appSrc, err := extractTables(normalized)
	if err != nil {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, err
	}

	categories, err := parseTable(catSrc)
	if err != nil {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, resolutionErrorf(err, "parsing category table")
	}
	applications, err := parseTable(appSrc)
	if err != nil {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, resolutionErrorf(err, "parsing application table")
	}

	table, err := NewNameTable(categories, applications)
	if err != nil {
		metrics.ResolverAttempts.WithLabelValues(metrics.ResolverError).Inc()
		return nil, resolutionErrorf(err, "fingerprinting name tables")
	}

	metrics.ResolverAttempts.WithLabelValues(metrics.ResolverHit).Inc()
	r.log.Info().
		Int("categories", len(categories)).
		Int("applications", len(applications)).
		Str("fingerprint", table.FingerprintPair()).
		Msg("resolved DPI name tables")
	return table, nil
}

// discoverBuildIDs scrapes the login page for front-end build identifiers.
func (r *ScriptResolver) discoverBuildIDs(ctx context.Context) ([]string, error) {
	loginURL := r.baseURL + "/manage/account/login"
	body, status, err := r.get(ctx, loginURL)
	if err != nil {
		return nil, resolutionErrorf(err, "fetching login page %s", loginURL)
	}
	if status != http.StatusOK {
		return nil, resolutionErrorf(nil, "login page %s returned status %d, expected 200", loginURL, status)
	}

	matches := buildIDPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, resolutionErrorf(nil, "no build id found on login page %s", loginURL)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids, nil
}

// get issues one GET on the shared session and drains the body.
func (r *ScriptResolver) get(ctx context.Context, rawURL string) (body string, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", 0, err
	}
	resp, err := r.session.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(b), resp.StatusCode, nil
}

// extractTables applies tablePattern to the normalized script and returns
// the literal source text of the category and application tables.
func extractTables(normalized string) (catSrc, appSrc string, err error) {
	groups := tablePattern.FindStringSubmatch(normalized)
	if groups == nil {
		return "", "", resolutionErrorf(nil, "classification script layout not recognized: table pattern did not match")
	}
	// groups[0] is the whole match; exactly two captures are expected.
	if len(groups) != 3 {
		return "", "", resolutionErrorf(nil, "table pattern yielded %d groups, expected 2", len(groups)-1)
	}
	return groups[1], groups[2], nil
}

// parseTable parses one captured object literal into a name map. The source
// is JS object-literal syntax, not strict JSON (unquoted keys, minification
// remnants), so it goes through a colon-spacing pre-pass and a YAML parse —
// YAML being a JSON superset that tolerates unquoted keys.
func parseTable(src string) (map[int]Record, error) {
	src = looseColonPattern.ReplaceAllString(src, `${1}${2}: ${3}`)

	table := make(map[int]Record)
	if err := yaml.Unmarshal([]byte(src), &table); err != nil {
		return nil, err
	}
	return table, nil
}
