package combatlog

import (
	"strings"
	"time"
)

const (
	layoutWithYear = "1/2/2006 15:04:05.999999999"
	layoutNoYear   = "1/2 15:04:05.999999999"
)

// ParseTimestamp reads a line timestamp such as "9/22/2024 20:15:32.1234-4"
// or the older "9/22 20:15:32.123". The trailing UTC offset in hours, when
// present, sets the zone. year fills in timestamps that carry none.
func ParseTimestamp(ts string, year int) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	loc := time.Local
	if dot := strings.LastIndexByte(ts, '.'); dot >= 0 {
		if i := strings.IndexAny(ts[dot:], "+-"); i >= 0 {
			offset := ts[dot+i:]
			ts = ts[:dot+i]
			if d, err := time.ParseDuration(offset + "h"); err == nil {
				loc = time.FixedZone("", int(d.Seconds()))
			}
		}
	}

	if t, err := time.ParseInLocation(layoutWithYear, ts, loc); err == nil {
		return t, true
	}
	t, err := time.ParseInLocation(layoutNoYear, ts, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
}
