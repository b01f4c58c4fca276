// Package dateutils provides the date parsing shared by the statement
// readers. Banks are not consistent about date formats, even within one
// export, so parsing tries a list of known layouts.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date format constants for the layouts that show up in statement exports.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutSlashed  = "02/01/2006"
)

// CommonFormats is the list of layouts tried in order when parsing dates.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutSlashed,
}

// ParseDate attempts to parse a date string using the common layouts.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

// FormatDate formats a date with the given layout, defaulting to ISO.
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DateLayoutISO
	}
	return date.Format(layout)
}
