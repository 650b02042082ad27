package util

import "time"

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

func FormatKST(t time.Time, layout string) string {
	return t.In(kstLocation).Format(layout)
}

// ParseRFC3339 parses an API timestamp, returning the zero time on bad input.
func ParseRFC3339(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
