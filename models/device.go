package models

// Device REST API Message Structures
//
// The counting device exposes a small JSON REST API. These structs mirror its
// wire formats; the device is the source of truth for counts while a run is
// in progress.

// CommandMessage is the body of POST /api/cmd.
type CommandMessage struct {
	Cmd    string `json:"cmd"`
	Type   string `json:"type,omitempty"`
	Value  *int   `json:"value,omitempty"`
	Button string `json:"button,omitempty"`
}

// DeviceStatus is the response of GET /api/status.
type DeviceStatus struct {
	Status    string `json:"status"` // RUNNING | STOPPED
	Count     int    `json:"count"`
	StartTime int64  `json:"startTime"`
}

// IRStatus is the response of GET /api/ir_status, polled to detect
// out-of-band physical remote button presses.
type IRStatus struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DeviceOrder is one element of the GET /api/orders response.
type DeviceOrder struct {
	Type      string `json:"type"`
	Target    int    `json:"target"`
	Warn      int    `json:"warn"`
	Status    string `json:"status"`
	IsCurrent bool   `json:"isCurrent"`
}

// BagType is the GET/POST /api/bagtype payload.
type BagType struct {
	Type string `json:"type"`
}

// DeviceConfig is the body of POST /api/config.
type DeviceConfig struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
	Warn   int    `json:"warn"`
}

// DeviceTime is the response of GET /api/current_time.
type DeviceTime struct {
	IsTimeSynced bool  `json:"isTimeSynced"`
	CurrentTime  int64 `json:"currentTime"`
}

// DeviceHistoryEntry is one element of the GET /api/history response.
type DeviceHistoryEntry struct {
	Time  int64  `json:"time"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}
