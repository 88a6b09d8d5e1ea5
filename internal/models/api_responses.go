// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

// Package models defines the typed records returned by the UniFi controller
// API. The controller wraps every response in a {meta, data} envelope; the
// data items are loosely typed here because the controller adds and removes
// fields across firmware versions. Unknown fields are preserved only where a
// record carries an Extra map.
package models

// Meta is the controller response wrapper common to all endpoints.
// rc is "ok" on success; msg carries the error detail otherwise.
type Meta struct {
	RC      string `json:"rc"`
	Message string `json:"msg,omitempty"`
}

// Envelope is the generic controller response shape: a Meta wrapper and a
// list of endpoint-specific records.
type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data []T  `json:"data"`
}

// Site is one controller-managed deployment grouping devices and clients.
type Site struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Description  string `json:"desc"`
	Role         string `json:"role,omitempty"`
	NumNewAlarms int    `json:"num_new_alarms,omitempty"`
	AttrHiddenID string `json:"attr_hidden_id,omitempty"`
	AttrNoDelete bool   `json:"attr_no_delete,omitempty"`
}

// ControllerUser is the authenticated account returned by /api/self.
type ControllerUser struct {
	ID          string   `json:"_id,omitempty"`
	Name        string   `json:"name"`
	AdminID     string   `json:"admin_id,omitempty"`
	EmailAlert  bool     `json:"email_alert_enabled,omitempty"`
	IsSuper     bool     `json:"is_super,omitempty"`
	SiteID      string   `json:"site_id,omitempty"`
	SiteName    string   `json:"site_name,omitempty"`
	SiteRole    string   `json:"site_role,omitempty"`
	SuperPerms  []string `json:"super_site_permissions,omitempty"`
	UIFilters   any      `json:"ui_settings,omitempty"`
	LastSiteID  string   `json:"last_site_id,omitempty"`
	RequiresTOS bool     `json:"requires_new_password,omitempty"`
}

// SiteStats is one row of /api/stat/sites: a Site plus health and counts.
type SiteStats struct {
	Site
	Health    []map[string]any `json:"health,omitempty"`
	NumSta    int              `json:"num_sta,omitempty"`
	NumAP     int              `json:"num_ap,omitempty"`
	NumAdopt  int              `json:"num_adopted,omitempty"`
	NumPend   int              `json:"num_pending,omitempty"`
	NumDisc   int              `json:"num_disconnected,omitempty"`
	NumDisabl int              `json:"num_disabled,omitempty"`
}

// Device is a controller-adopted network device (AP, switch, gateway).
// The controller returns several hundred fields per device; only the stable
// identifying subset is typed and the remainder is intentionally dropped.
type Device struct {
	ID         string `json:"_id"`
	MAC        string `json:"mac"`
	Name       string `json:"name,omitempty"`
	Model      string `json:"model,omitempty"`
	Type       string `json:"type,omitempty"`
	IP         string `json:"ip,omitempty"`
	Version    string `json:"version,omitempty"`
	Serial     string `json:"serial,omitempty"`
	SiteID     string `json:"site_id,omitempty"`
	Adopted    bool   `json:"adopted,omitempty"`
	State      int    `json:"state,omitempty"`
	Uptime     int64  `json:"uptime,omitempty"`
	LastSeen   int64  `json:"last_seen,omitempty"`
	NumSta     int    `json:"num_sta,omitempty"`
	UserNumSta int    `json:"user-num_sta,omitempty"`
}

// ClientStation is a client record from stat/sta (active) or rest/user (known).
type ClientStation struct {
	ID        string `json:"_id,omitempty"`
	MAC       string `json:"mac"`
	Hostname  string `json:"hostname,omitempty"`
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip,omitempty"`
	SiteID    string `json:"site_id,omitempty"`
	Network   string `json:"network,omitempty"`
	IsWired   bool   `json:"is_wired,omitempty"`
	IsGuest   bool   `json:"is_guest,omitempty"`
	FirstSeen int64  `json:"first_seen,omitempty"`
	LastSeen  int64  `json:"last_seen,omitempty"`
	Uptime    int64  `json:"uptime,omitempty"`
	RxBytes   int64  `json:"rx_bytes,omitempty"`
	TxBytes   int64  `json:"tx_bytes,omitempty"`
	OUI       string `json:"oui,omitempty"`
}

// DDNSStatus is one row of stat/dynamicdns.
type DDNSStatus struct {
	Service    string `json:"service,omitempty"`
	HostName   string `json:"host_name,omitempty"`
	IP         string `json:"ip,omitempty"`
	Server     string `json:"server,omitempty"`
	LastChange int64  `json:"last_changed,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Event is one row of stat/event.
type Event struct {
	ID        string `json:"_id,omitempty"`
	Key       string `json:"key,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
	SiteID    string `json:"site_id,omitempty"`
	Time      int64  `json:"time,omitempty"`
	Datetime  string `json:"datetime,omitempty"`
	Message   string `json:"msg,omitempty"`
	User      string `json:"user,omitempty"`
	AP        string `json:"ap,omitempty"`
}

// Alarm is one row of stat/alarm.
type Alarm struct {
	ID           string `json:"_id,omitempty"`
	Key          string `json:"key,omitempty"`
	Subsystem    string `json:"subsystem,omitempty"`
	SiteID       string `json:"site_id,omitempty"`
	Time         int64  `json:"time,omitempty"`
	Datetime     string `json:"datetime,omitempty"`
	Message      string `json:"msg,omitempty"`
	Archived     bool   `json:"archived,omitempty"`
	HandledBy    string `json:"handled_admin_id,omitempty"`
	HandledTime  string `json:"handled_time,omitempty"`
	CatastropheL string `json:"catname,omitempty"`
}

// SpeedTestStatus is one row of the cmd/devmgr speedtest-status response.
type SpeedTestStatus struct {
	Rundate        int64   `json:"rundate,omitempty"`
	Runtime        int64   `json:"runtime,omitempty"`
	StatusDownload int     `json:"status_download,omitempty"`
	StatusPing     int     `json:"status_ping,omitempty"`
	StatusUpload   int     `json:"status_upload,omitempty"`
	StatusSummary  int     `json:"status_summary,omitempty"`
	XputDownload   float64 `json:"xput_download,omitempty"`
	XputUpload     float64 `json:"xput_upload,omitempty"`
	Latency        float64 `json:"latency,omitempty"`
}

// ReportRow is one row of a stat/report response. Reports are attribute
// dictionaries keyed by the requested attrs, so the row stays a generic map;
// "time" is a millisecond epoch and the remaining keys are numeric counters.
type ReportRow map[string]any
