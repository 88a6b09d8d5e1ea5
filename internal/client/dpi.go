// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import (
	"context"

	"github.com/dpiscope/dpiscope/internal/models"
	"github.com/dpiscope/dpiscope/internal/schema"
)

// DPI query types.
const (
	dpiByApp = "by_app"
	dpiByCat = "by_cat"
)

// dpiRequest is the body of stat/sitedpi and stat/stadpi queries.
type dpiRequest struct {
	Type string   `json:"type"`
	Cats []int    `json:"cats,omitempty"`
	MACs []string `json:"macs,omitempty"`
}

// GetSiteDPIByApp returns the site-aggregate DPI traffic breakdown by
// application, optionally filtered to the given category ids.
//
// When the name tables were resolved at construction, every record is
// annotated with XCat/XApp/XCatAppID; otherwise records keep raw ids only.
func (c *Client) GetSiteDPIByApp(ctx context.Context, site string, cats []int) (*models.Envelope[models.DPIUsage], error) {
	return c.dpiQuery(ctx, sitePath(site, "stat/sitedpi"), schema.StatSiteDPIByApp, dpiRequest{Type: dpiByApp, Cats: cats})
}

// GetSiteDPIByCategory returns the site-aggregate DPI traffic breakdown by
// category.
func (c *Client) GetSiteDPIByCategory(ctx context.Context, site string) (*models.Envelope[models.DPIUsage], error) {
	return c.dpiQuery(ctx, sitePath(site, "stat/sitedpi"), schema.StatSiteDPIByCat, dpiRequest{Type: dpiByCat})
}

// GetClientDPIByApp returns the per-client DPI traffic breakdown by
// application, optionally filtered to the given client MACs.
//
// The cats filter is forwarded when supplied, but current controller
// firmware ignores it on this endpoint and returns all categories. Kept as
// documented behavior, not fixed client-side.
func (c *Client) GetClientDPIByApp(ctx context.Context, site string, macs []string, cats []int) (*models.Envelope[models.DPIUsage], error) {
	return c.dpiQuery(ctx, sitePath(site, "stat/stadpi"), schema.StatStaDPIByApp, dpiRequest{Type: dpiByApp, MACs: macs, Cats: cats})
}

// GetClientDPIByCategory returns the per-client DPI traffic breakdown by
// category, optionally filtered to the given client MACs.
func (c *Client) GetClientDPIByCategory(ctx context.Context, site string, macs []string) (*models.Envelope[models.DPIUsage], error) {
	return c.dpiQuery(ctx, sitePath(site, "stat/stadpi"), schema.StatStaDPIByCat, dpiRequest{Type: dpiByCat, MACs: macs})
}

// dpiQuery executes one DPI statistics call and annotates the result.
func (c *Client) dpiQuery(ctx context.Context, path, descriptor string, req dpiRequest) (*models.Envelope[models.DPIUsage], error) {
	envelope, err := postEnvelope[models.DPIUsage](ctx, c, path, descriptor, req)
	if err != nil {
		return nil, err
	}
	c.annotate(envelope.Data)
	return envelope, nil
}

// annotate resolves DPI identifiers on every usage record in place.
// Skipped entirely (and silently) when the name tables are absent.
func (c *Client) annotate(usages []models.DPIUsage) {
	if !c.names.Ready() {
		return
	}
	c.log.Debug().Msg("mapping DPI application and category ids to names")
	for i := range usages {
		c.names.Annotate(usages[i].ByApp)
		c.names.Annotate(usages[i].ByCat)
	}
}
