// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

/*
Package dpi recovers the UniFi controller's DPI application and category
name tables and applies them to raw traffic statistics.

The controller reports DPI traffic only as numeric identifiers. The name
tables that turn those into "Web"/"HTTPS"-style labels are not exposed
through any documented API: they live inside a minified front-end script
(dynamic.dpi.js) whose location and internal layout are version-dependent
and undocumented. Discovery and parsing of that script is therefore a
best-effort, pluggable strategy (Resolver); ScriptResolver is the production
implementation.

Once resolved, the tables are immutable for the client session. NameTable
bundles both maps together with their content fingerprints so that annotated
records can be traced back to the exact tables that produced the names.
*/
package dpi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dpiscope/dpiscope/internal/metrics"
	"github.com/dpiscope/dpiscope/internal/models"
)

// UnlistedName is the sentinel resolved name for identifiers missing from
// the tables. Lookups degrade to this value, never to an error.
const UnlistedName = "__unlisted__"

// Record is one name-table entry. The source tables carry additional
// attributes on some entries; only the display name is contractual.
type Record struct {
	Name string `json:"name" yaml:"name"`
}

// CategoryMap maps a DPI category id to its record.
type CategoryMap map[int]Record

// ApplicationMap maps a composite id (see CompositeID) to its record.
type ApplicationMap map[int]Record

// CompositeID packs a category id and an application id into the key used by
// the application name table. The convention is fixed by the controller
// front end: application ids occupy the low 16 bits, category ids the bits
// above them.
func CompositeID(cat, app int) int {
	return cat<<16 | app
}

// fingerprint computes the SHA-256 hex digest of the canonical JSON
// serialization of a map. Map keys serialize in deterministic (sorted)
// order, so equal maps always produce equal fingerprints.
func fingerprint(m map[int]Record) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("serializing name table: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// NameTable bundles the resolved category and application maps together with
// their content fingerprints. A NameTable is immutable after construction
// and is safe for concurrent reads.
type NameTable struct {
	Categories   CategoryMap
	Applications ApplicationMap

	// CategoryHash and ApplicationHash fingerprint the two maps. They are
	// computed once at construction and stamped onto annotated records as
	// "<CategoryHash>:<ApplicationHash>" so consumers can detect when the
	// underlying tables changed between sessions.
	CategoryHash    string
	ApplicationHash string
}

// NewNameTable builds a NameTable from resolved maps and computes both
// fingerprints.
func NewNameTable(categories CategoryMap, applications ApplicationMap) (*NameTable, error) {
	catHash, err := fingerprint(categories)
	if err != nil {
		return nil, err
	}
	appHash, err := fingerprint(applications)
	if err != nil {
		return nil, err
	}
	return &NameTable{
		Categories:      categories,
		Applications:    applications,
		CategoryHash:    catHash,
		ApplicationHash: appHash,
	}, nil
}

// Ready reports whether both maps are present. Annotation is only attempted
// when Ready; a nil NameTable is never ready.
func (t *NameTable) Ready() bool {
	return t != nil && t.Categories != nil && t.Applications != nil
}

// FingerprintPair returns the composite fingerprint string stamped onto
// annotated records.
func (t *NameTable) FingerprintPair() string {
	return t.CategoryHash + ":" + t.ApplicationHash
}

// Annotate resolves the numeric identifiers of every stat record in place.
//
// Each record gains XCat (category name), XApp (application name, looked up
// by CompositeID) and XCatAppID (the table fingerprint pair). Identifiers
// missing from the tables resolve to UnlistedName. Annotation overwrites any
// previous values, so re-annotating with the same tables is a no-op.
//
// When either map is absent the records are left untouched; this never
// fails.
func (t *NameTable) Annotate(stats []models.TrafficStat) {
	if !t.Ready() {
		return
	}

	pair := t.FingerprintPair()
	for i := range stats {
		stat := &stats[i]

		cat, ok := t.Categories[stat.Cat]
		if !ok {
			cat = Record{Name: UnlistedName}
		}
		app, ok := t.Applications[CompositeID(stat.Cat, stat.App)]
		if !ok {
			app = Record{Name: UnlistedName}
		}

		stat.XCat = cat.Name
		stat.XApp = app.Name
		stat.XCatAppID = pair

		metrics.AnnotatedRecords.Inc()
	}
}
