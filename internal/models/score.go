package models

import (
	"math"
	"strconv"
	"strings"
)

// ParseScore turns the free-text score field into a nullable number.
// Blank, non-numeric, NaN and infinite input all yield nil. A decimal
// comma is accepted ("8,5").
func ParseScore(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
