package utils

import (
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetEnvVariable đọc env var với fallback default value
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func ParseFloatToDecimal(number *float64) *decimal.Decimal {
	if number == nil {
		return nil
	}
	d := decimal.NewFromFloat(*number)
	return &d
}

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// IsValidUUID - Kiểm tra format UUID hợp lệ
func IsValidUUID(u string) bool {
	if len(u) != 36 {
		return false
	}
	// Simple validation: check dashes at correct positions
	if u[8] != '-' || u[13] != '-' || u[18] != '-' || u[23] != '-' {
		return false
	}
	return true
}
