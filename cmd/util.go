package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func stderrPrintLnf(message string, args ...interface{}) error {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, err := fmt.Fprintf(os.Stderr, message, args...)
	return err
}

// actorName is who gets credited in the activity log for changes made by this process.
func actorName() string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "cli"
}

// parseTime accepts a calendar date (taken as midnight UTC) or a full RFC3339 timestamp.
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse time %q (expected YYYY-MM-DD or RFC3339)", value)
	}
	return t.UTC(), nil
}
