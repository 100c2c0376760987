package services

import "time"

const (
	NumberFormatMinute = "R-YYYYMMDD-HHMM"
	NumberFormatSecond = "YYYYMMDD-HHMMSS"
)

// FormatReceiptNumber stamps t, already in the issuing timezone, into the
// configured receipt number layout.
func FormatReceiptNumber(format string, t time.Time) string {
	switch format {
	case NumberFormatSecond:
		return t.Format("20060102-150405")
	default:
		return "R-" + t.Format("20060102-1504")
	}
}

var jst = time.FixedZone("JST", 9*60*60)

func loadLocation(name string) *time.Location {
	if name == "" {
		return jst
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return jst
	}
	return loc
}
