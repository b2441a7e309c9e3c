package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ===================================================================
// ID GENERATION HELPERS
// ===================================================================

// GenerateUniqueID generates a unique ID based on current timestamp
func GenerateUniqueID() string {
	return fmt.Sprintf("%x", time.Now().UnixNano())
}

// GenerateProductID generates a unique product ID with prefix
func GenerateProductID() string {
	return fmt.Sprintf("product_%s", GenerateUniqueID())
}

// GenerateOrderID generates a unique order ID with prefix
func GenerateOrderID() string {
	return fmt.Sprintf("order_%s", GenerateUniqueID())
}

// ===================================================================
// STRING HELPERS
// ===================================================================

// GetValueOrDefault returns value if not empty, otherwise returns defaultValue
func GetValueOrDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

// GetIntOrDefault returns value if valid, otherwise returns defaultValue
func GetIntOrDefault(valueStr string, defaultValue int) int {
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// GetBoolOrDefault returns value if valid, otherwise returns defaultValue
func GetBoolOrDefault(valueStr string, defaultValue bool) bool {
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// GetUnixTimestamp returns the current unix timestamp
func GetUnixTimestamp() int64 {
	return time.Now().Unix()
}

// ===================================================================
// QUANTITY HELPERS
// ===================================================================

// DefaultWarnQuantity computes the default warning threshold for a target:
// 10% of the target, rounded down.
func DefaultWarnQuantity(target int) int {
	return target / 10
}

// ===================================================================
// PAGINATION HELPERS
// ===================================================================

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GetPaginationParams extracts and validates pagination parameters
func GetPaginationParams(limitStr, offsetStr string, defaultLimit int) PaginationParams {
	limit := defaultLimit
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	offset := 0
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// SuccessResponse creates a standard success response
func SuccessResponse(message string, data interface{}) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "success",
		"message": message,
	}

	if data != nil {
		response["data"] = data
	}

	return response
}

// ErrorResponse creates a standard error response
func ErrorResponse(message string) map[string]interface{} {
	return map[string]interface{}{
		"status":  "error",
		"message": message,
	}
}

// CreateListResponse creates a standard list response with pagination
func CreateListResponse(items interface{}, count int, pagination *PaginationParams) map[string]interface{} {
	response := map[string]interface{}{
		"items": items,
		"count": count,
	}

	if pagination != nil {
		response["limit"] = pagination.Limit
		response["offset"] = pagination.Offset
	}

	return response
}
