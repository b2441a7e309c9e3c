package models

import (
	"time"
)

// Order status values. An order moves waiting -> counting -> completed during a
// run; counting -> paused when the run is paused.
const (
	OrderStatusWaiting   = "waiting"
	OrderStatusCounting  = "counting"
	OrderStatusPaused    = "paused"
	OrderStatusCompleted = "completed"
)

// Device command names accepted by POST /api/cmd on the counting device.
const (
	CmdStart             = "start"
	CmdPause             = "pause"
	CmdReset             = "reset"
	CmdSelect            = "select"
	CmdBrightness        = "brightness"
	CmdSensorDelay       = "sensorDelay"
	CmdBagDetectionDelay = "bagDetectionDelay"
	CmdMinBagInterval    = "minBagInterval"
	CmdRemote            = "REMOTE"
)

// Device status values reported by GET /api/status.
const (
	DeviceStatusRunning = "RUNNING"
	DeviceStatusStopped = "STOPPED"
)

// Database Models

// Product is a bag/parcel type that orders reference.
type Product struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `json:"name"`
	Code       string    `gorm:"uniqueIndex" json:"code"`
	UnitWeight float64   `json:"unitWeight"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Batch is a named collection of orders. At most one batch is active at any
// time across the whole collection.
type Batch struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `gorm:"index" json:"active"`
	Orders      []Order   `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"orders"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Order is a unit of work: count Target bags of a product for a customer.
// Seq is 1-based and contiguous within its batch, renumbered on deletion.
type Order struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	BatchID     string    `gorm:"index" json:"batchId"`
	Seq         int       `json:"seq"`
	Customer    string    `json:"customer"`
	Code        string    `json:"code"`
	Vehicle     string    `json:"vehicle"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Target      int       `json:"target"`
	Warn        int       `json:"warn"`
	Count       int       `json:"count"`
	Status      string    `json:"status"`
	Selected    bool      `json:"selected"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryEntry is an immutable record written when an order completes.
type HistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Customer    string    `json:"customer"`
	ProductName string    `json:"productName"`
	Planned     int       `json:"planned"`
	Counted     int       `json:"counted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DeviceSettings is the single persisted settings row (ID is always 1).
type DeviceSettings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	DeviceName        string    `json:"deviceName"`
	DeviceIP          string    `json:"deviceIp"`
	Gateway           string    `json:"gateway"`
	Subnet            string    `json:"subnet"`
	SensorDelay       int       `json:"sensorDelay"`       // milliseconds
	BagDetectionDelay int       `json:"bagDetectionDelay"` // milliseconds
	MinBagInterval    int       `json:"minBagInterval"`    // milliseconds
	AutoReset         bool      `json:"autoReset"`
	Brightness        int       `json:"brightness"` // 0-100
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DefaultSettings returns the factory settings, overlaid by the persisted row
// at startup.
func DefaultSettings() DeviceSettings {
	return DeviceSettings{
		ID:                1,
		DeviceName:        "bag-counter",
		DeviceIP:          "192.168.1.50",
		Gateway:           "192.168.1.1",
		Subnet:            "255.255.255.0",
		SensorDelay:       50,
		BagDetectionDelay: 200,
		MinBagInterval:    300,
		AutoReset:         false,
		Brightness:        80,
	}
}

// CountingState is the transient state of a counting run. It is not persisted
// to the database; a snapshot is cached in Redis for dashboards.
type CountingState struct {
	Active       bool  `json:"active"`
	CurrentIndex int   `json:"currentIndex"` // index into the selected-orders view
	TotalPlanned int   `json:"totalPlanned"`
	TotalCounted int   `json:"totalCounted"`
	Version      int64 `json:"version"` // bumped whenever the counting order changes; stale polls are discarded
}
