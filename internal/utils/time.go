package utils

import (
	"time"
)

// UnixMilliToTime converts a millisecond Unix timestamp, as carried in ticket
// QR payloads, to a time.Time.
func UnixMilliToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// TimeToUnixMilli is the inverse of UnixMilliToTime.
func TimeToUnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
