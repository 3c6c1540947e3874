package format

import (
	"strconv"
	"time"
)

// Duration renders elapsed play time as "3h 12m", "12m" or "< 1m".
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	if hours == 0 && minutes == 0 {
		return "< 1m"
	}
	out := ""
	if hours > 0 {
		out = strconv.FormatInt(hours, 10) + "h "
	}
	return out + strconv.FormatInt(minutes, 10) + "m"
}
