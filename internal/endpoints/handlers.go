package endpoints

import (
	"strings"
	"time"
)

// defaultRangeDays is the lookback applied when a request omits the
// start timestamp.
const defaultRangeDays = 30

// canonicalHandle normalizes user input to the stored "@name" form.
// The handle stays an opaque key everywhere past this point.
func canonicalHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}

// timeRange resolves optional unix-second bounds to concrete times.
func timeRange(start, end int64) (time.Time, time.Time, error) {
	if start == 0 {
		start = time.Now().AddDate(0, 0, -defaultRangeDays).Unix()
	}
	if end == 0 {
		end = time.Now().Unix()
	}
	if start > end {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return time.Unix(start, 0).UTC(), time.Unix(end, 0).UTC(), nil
}

func canonicalHandles(handles []string) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		if c := canonicalHandle(h); c != "" {
			out = append(out, c)
		}
	}
	return out
}
