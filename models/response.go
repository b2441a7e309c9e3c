package models

import (
	"time"
)

// Service Response Models

// CountingStatus is the full view of a counting run returned by the API and
// cached in Redis for dashboards.
type CountingStatus struct {
	State        string    `json:"state"` // Idle | Running | Paused
	BatchID      string    `json:"batchId,omitempty"`
	BatchName    string    `json:"batchName,omitempty"`
	CurrentOrder *Order    `json:"currentOrder,omitempty"`
	TotalPlanned int       `json:"totalPlanned"`
	TotalCounted int       `json:"totalCounted"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// OrderPage is one page of the active batch's order list.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
	TotalCount int     `json:"totalCount"`
	PageSize   int     `json:"pageSize"`
}

// DeviceHealth is a combined device reachability report: Online reflects a
// live probe, LastKnownOnline the cached result of the background probe.
type DeviceHealth struct {
	Online          bool      `json:"online"`
	LastKnownOnline bool      `json:"lastKnownOnline"`
	Status          string    `json:"status,omitempty"`
	Count           int       `json:"count"`
	IsTimeSynced    bool      `json:"isTimeSynced"`
	LastChecked     time.Time `json:"lastChecked"`
}
