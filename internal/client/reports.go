// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dpiscope/dpiscope/internal/models"
	"github.com/dpiscope/dpiscope/internal/schema"
)

// Report intervals accepted by the controller.
const (
	Interval5Min   = "5minutes"
	IntervalHourly = "hourly"
	IntervalDaily  = "daily"
)

// Report element types accepted by the controller.
const (
	ElementSite = "site"
	ElementUser = "user"
	ElementAP   = "ap"
)

// AllStatAttributes is the full attribute set the controller reports on.
var AllStatAttributes = []string{
	"bytes", "wan-tx_bytes", "wan-rx_bytes", "wlan_bytes", "num_sta",
	"lan-num_sta", "wlan-num_sta", "time", "rx_bytes", "tx_bytes",
}

// ReportRequest is a statistics report query. Interval, ElementType and
// every attribute are validated client-side before any request is sent: the
// controller silently ignores invalid attributes otherwise.
//
// Start and End are optional millisecond epoch bounds; MACs is an optional
// device allow-list.
type ReportRequest struct {
	Interval    string `json:"-" validate:"required,oneof=5minutes hourly daily"`
	ElementType string `json:"-" validate:"required,oneof=site user ap"`

	Attrs []string `json:"attrs" validate:"required,min=1,dive,oneof=bytes wan-tx_bytes wan-rx_bytes wlan_bytes num_sta lan-num_sta wlan-num_sta time rx_bytes tx_bytes"`
	Start *int64   `json:"start,omitempty"`
	End   *int64   `json:"end,omitempty"`
	MACs  []string `json:"macs,omitempty"`
}

// validate is the shared, struct-info-caching validator instance.
var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// StatReport queries POST /api/s/<site>/stat/report/<interval>.<element>.
// Pre-flight validation failures return *ValidationError with no network
// call issued.
func (c *Client) StatReport(ctx context.Context, site string, req ReportRequest) (*models.Envelope[models.ReportRow], error) {
	if err := validate().Struct(req); err != nil {
		return nil, newValidationError(err)
	}

	var descriptor string
	switch req.ElementType {
	case ElementSite:
		descriptor = schema.StatReportBySite
	case ElementUser:
		descriptor = schema.StatReportByUser
	case ElementAP:
		descriptor = schema.StatReportByAP
	}

	path := sitePath(site, fmt.Sprintf("stat/report/%s.%s", req.Interval, req.ElementType))
	return postEnvelope[models.ReportRow](ctx, c, path, descriptor, req)
}

// allStatsReport is the shared body of the nine convenience wrappers.
func (c *Client) allStatsReport(ctx context.Context, site, interval, element string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.StatReport(ctx, site, ReportRequest{
		Interval:    interval,
		ElementType: element,
		Attrs:       AllStatAttributes,
		Start:       start,
		End:         end,
	})
}

// Get5MinSiteStats reports all attributes per 5-minute bucket, site-wide.
func (c *Client) Get5MinSiteStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, Interval5Min, ElementSite, start, end)
}

// Get5MinAPStats reports all attributes per 5-minute bucket, per access point.
func (c *Client) Get5MinAPStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, Interval5Min, ElementAP, start, end)
}

// Get5MinUserStats reports all attributes per 5-minute bucket, per client.
func (c *Client) Get5MinUserStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, Interval5Min, ElementUser, start, end)
}

// GetHourlySiteStats reports all attributes per hour, site-wide.
func (c *Client) GetHourlySiteStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalHourly, ElementSite, start, end)
}

// GetHourlyAPStats reports all attributes per hour, per access point.
func (c *Client) GetHourlyAPStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalHourly, ElementAP, start, end)
}

// GetHourlyUserStats reports all attributes per hour, per client.
func (c *Client) GetHourlyUserStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalHourly, ElementUser, start, end)
}

// GetDailySiteStats reports all attributes per day, site-wide.
func (c *Client) GetDailySiteStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalDaily, ElementSite, start, end)
}

// GetDailyAPStats reports all attributes per day, per access point.
func (c *Client) GetDailyAPStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalDaily, ElementAP, start, end)
}

// GetDailyUserStats reports all attributes per day, per client.
func (c *Client) GetDailyUserStats(ctx context.Context, site string, start, end *int64) (*models.Envelope[models.ReportRow], error) {
	return c.allStatsReport(ctx, site, IntervalDaily, ElementUser, start, end)
}
