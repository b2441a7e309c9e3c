package models

// --- Request DTOs ---

// ProductRequest is the DTO for creating or updating a product.
type ProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	Code       string  `json:"code" binding:"required"`
	UnitWeight float64 `json:"unitWeight" binding:"required"`
}

// OrderRequest is the DTO for adding an order to the working set.
type OrderRequest struct {
	Customer  string `json:"customer" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Vehicle   string `json:"vehicle" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Target    int    `json:"target" binding:"required"`
	Warn      int    `json:"warn,omitempty"` // 0 means "use the default"
}

// SaveBatchRequest is the DTO for saving the working set as a batch.
type SaveBatchRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// SelectOrderRequest is the DTO for toggling an order's selection flag.
type SelectOrderRequest struct {
	Selected bool `json:"selected"`
}

// PageRequest is the DTO for pagination moves. Either Page or Move is set;
// Move is one of "first", "prev", "next", "last".
type PageRequest struct {
	Page int    `json:"page,omitempty"`
	Move string `json:"move,omitempty"`
}

// SettingsRequest is the DTO for updating device settings.
type SettingsRequest struct {
	DeviceName        string `json:"deviceName"`
	DeviceIP          string `json:"deviceIp"`
	Gateway           string `json:"gateway"`
	Subnet            string `json:"subnet"`
	SensorDelay       int    `json:"sensorDelay"`
	BagDetectionDelay int    `json:"bagDetectionDelay"`
	MinBagInterval    int    `json:"minBagInterval"`
	AutoReset         bool   `json:"autoReset"`
	Brightness        int    `json:"brightness"`
}
