// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import "time"

// TimeRange is a pair of millisecond epoch bounds for report queries.
type TimeRange struct {
	Start int64
	End   int64
}

// Bounds returns the range as the *int64 pair StatReport expects.
func (r TimeRange) Bounds() (start, end *int64) {
	return &r.Start, &r.End
}

// LastThirtyMinutes returns the half-hour window ending now.
func LastThirtyMinutes() TimeRange {
	return rangeEndingNow(30 * time.Minute)
}

// LastHour returns the one-hour window ending now.
func LastHour() TimeRange {
	return rangeEndingNow(time.Hour)
}

func rangeEndingNow(d time.Duration) TimeRange {
	now := time.Now().UTC()
	return TimeRange{
		Start: now.Add(-d).Unix() * 1000,
		End:   now.Unix() * 1000,
	}
}
