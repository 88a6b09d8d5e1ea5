// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package models

// TrafficStat is a raw DPI entry from a by_app or by_cat breakdown.
//
// Cat and App are the controller's internal numeric identifiers. The XCat,
// XApp and XCatAppID fields are not part of the wire format: they are filled
// in by the DPI name-table annotation step when the tables are available.
// XCatAppID is "<categoryMapHash>:<applicationMapHash>", the fingerprint of
// the tables the names were resolved against.
type TrafficStat struct {
	App       int   `json:"app"`
	Cat       int   `json:"cat"`
	RxBytes   int64 `json:"rx_bytes,omitempty"`
	TxBytes   int64 `json:"tx_bytes,omitempty"`
	RxPackets int64 `json:"rx_packets,omitempty"`
	TxPackets int64 `json:"tx_packets,omitempty"`

	// Annotation output. Never sent by the controller.
	XCat      string `json:"x_cat,omitempty"`
	XApp      string `json:"x_app,omitempty"`
	XCatAppID string `json:"x_cat_app_id,omitempty"`
}

// DPIUsage is one data item of a stat/sitedpi or stat/stadpi response.
// Site-aggregate responses carry SiteID; per-device responses carry the
// client MAC. Either ByApp or ByCat is populated depending on the query type.
type DPIUsage struct {
	SiteID string        `json:"site_id,omitempty"`
	MAC    string        `json:"mac,omitempty"`
	ByApp  []TrafficStat `json:"by_app,omitempty"`
	ByCat  []TrafficStat `json:"by_cat,omitempty"`
}
