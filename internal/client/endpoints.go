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

// GetSelf returns the authenticated controller account.
func (c *Client) GetSelf(ctx context.Context) (*models.Envelope[models.ControllerUser], error) {
	return getEnvelope[models.ControllerUser](ctx, c, "/api/self", schema.APISelf)
}

// GetSites lists the sites visible to the authenticated account.
func (c *Client) GetSites(ctx context.Context) (*models.Envelope[models.Site], error) {
	return getEnvelope[models.Site](ctx, c, "/api/self/sites", schema.APISelfSites)
}

// GetSiteStats lists all sites with their health summaries and counts.
func (c *Client) GetSiteStats(ctx context.Context) (*models.Envelope[models.SiteStats], error) {
	return getEnvelope[models.SiteStats](ctx, c, "/api/stat/sites", schema.APIStatSites)
}

// GetDevices lists the controller-adopted devices of a site.
func (c *Client) GetDevices(ctx context.Context, site string) (*models.Envelope[models.Device], error) {
	return getEnvelope[models.Device](ctx, c, sitePath(site, "stat/device"), schema.StatDevice)
}

// GetDevicesDefaultSite lists the devices of the built-in default site.
func (c *Client) GetDevicesDefaultSite(ctx context.Context) (*models.Envelope[models.Device], error) {
	return c.GetDevices(ctx, DefaultSite)
}

// GetActiveClients lists the currently connected client stations of a site.
func (c *Client) GetActiveClients(ctx context.Context, site string) (*models.Envelope[models.ClientStation], error) {
	return getEnvelope[models.ClientStation](ctx, c, sitePath(site, "stat/sta"), schema.StatSta)
}

// GetKnownClients lists every client station the site has ever seen.
func (c *Client) GetKnownClients(ctx context.Context, site string) (*models.Envelope[models.ClientStation], error) {
	return getEnvelope[models.ClientStation](ctx, c, sitePath(site, "rest/user"), schema.RestSta)
}

// GetDDNSInfo returns the dynamic DNS status of a site.
func (c *Client) GetDDNSInfo(ctx context.Context, site string) (*models.Envelope[models.DDNSStatus], error) {
	return getEnvelope[models.DDNSStatus](ctx, c, sitePath(site, "stat/dynamicdns"), schema.StatDynamicDNS)
}
