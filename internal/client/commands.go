// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import (
	"context"

	"github.com/dpiscope/dpiscope/internal/models"
)

// devmgrCommand is the body of a cmd/devmgr device-manager command.
type devmgrCommand struct {
	Cmd string `json:"cmd"`
}

// RunSpeedTest asks the site gateway to start a WAN speed test. The result
// is polled separately via SpeedTestStatus.
func (c *Client) RunSpeedTest(ctx context.Context, site string) (*models.Envelope[map[string]any], error) {
	return postEnvelope[map[string]any](ctx, c, sitePath(site, "cmd/devmgr"), "", devmgrCommand{Cmd: "speedtest"})
}

// SpeedTestStatus reports the state and results of the last speed test.
func (c *Client) SpeedTestStatus(ctx context.Context, site string) (*models.Envelope[models.SpeedTestStatus], error) {
	return postEnvelope[models.SpeedTestStatus](ctx, c, sitePath(site, "cmd/devmgr"), "", devmgrCommand{Cmd: "speedtest-status"})
}

// GetEvents lists the recent events of a site.
func (c *Client) GetEvents(ctx context.Context, site string) (*models.Envelope[models.Event], error) {
	return postEnvelope[models.Event](ctx, c, sitePath(site, "stat/event"), "", nil)
}

// GetAlarms lists the alarms of a site, most recent first.
func (c *Client) GetAlarms(ctx context.Context, site string) (*models.Envelope[models.Alarm], error) {
	return postEnvelope[models.Alarm](ctx, c, sitePath(site, "stat/alarm"), "", nil)
}
