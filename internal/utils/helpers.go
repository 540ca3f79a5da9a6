package utils

import (
	"fmt"
)

const (
	kib = 1024
	mib = 1024 * 1024
)

// FormatFileSize renders a byte count with a B/KB/MB suffix using 1024-based
// thresholds. KB and MB are rounded to two decimals.
func FormatFileSize(sizeBytes int64) string {
	switch {
	case sizeBytes < kib:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < mib:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/kib)
	default:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/mib)
	}
}

// StrOrEmpty dereferences an optional string.
func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
