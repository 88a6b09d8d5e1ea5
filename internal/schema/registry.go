// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

// Package schema validates controller response bodies against versioned
// JSON-schema descriptors, one per endpoint family. The descriptors are
// embedded at build time under schemas/v1; response validation is a
// declarative shape check, not inline conditionals, so a firmware change
// only requires revising a descriptor.
package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/v1/*.json
var schemaFS embed.FS

// Descriptor names, mirroring the v1 endpoint families.
const (
	APISelf          = "api_self"
	APISelfSites     = "api_self_sites"
	APIStatSites     = "api_stat_sites"
	StatDevice       = "stat_device"
	StatSta          = "stat_sta"
	RestSta          = "rest_sta"
	StatDynamicDNS   = "stat_dynamicdns"
	StatReportBySite = "stat_report_by_site"
	StatReportByAP   = "stat_report_by_ap"
	StatReportByUser = "stat_report_by_user"
	StatSiteDPIByApp = "stat_sitedpi_by_app"
	StatSiteDPIByCat = "stat_sitedpi_by_category"
	StatStaDPIByApp  = "stat_stadpi_by_app"
	StatStaDPIByCat  = "stat_stadpi_by_category"
)

// ValidationError reports a response body that does not conform to its
// endpoint descriptor.
type ValidationError struct {
	Descriptor string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response does not match schema %q: %s",
		e.Descriptor, strings.Join(e.Violations, "; "))
}

// Registry holds the compiled endpoint descriptors.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry compiles every embedded v1 descriptor.
func NewRegistry() (*Registry, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas/v1")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schemas: %w", err)
	}

	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := schemaFS.ReadFile(path.Join("schemas/v1", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", entry.Name(), err)
		}
		r.schemas[name] = compiled
	}
	return r, nil
}

// Validate checks a raw response body against the named descriptor.
// A non-conforming body returns *ValidationError.
func (r *Registry) Validate(descriptor string, body []byte) error {
	compiled, ok := r.schemas[descriptor]
	if !ok {
		return fmt.Errorf("unknown schema descriptor %q", descriptor)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationError{Descriptor: descriptor, Violations: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		violations = append(violations, resErr.String())
	}
	return &ValidationError{Descriptor: descriptor, Violations: violations}
}
