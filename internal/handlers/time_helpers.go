package handlers

import "time"

// parseDate parses a YYYY-MM-DD query parameter as a calendar day in the
// application timezone.
func parseDate(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, loc)
}

// parseTimestamp accepts the ISO timestamps the frontend sends, with or
// without sub-second precision or an explicit offset. Timestamps without
// an offset are read in the application timezone.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}

	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
