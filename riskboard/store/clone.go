package store

import (
	"strings"
	"time"

	"github.com/anchore/riskboard/riskboard/model"
)

// CloneFinding returns a copy of the finding that shares no pointers with the original.
func CloneFinding(f model.Finding) model.Finding {
	f.CVSSScore = cloneFloat(f.CVSSScore)
	f.AssetID = cloneString(f.AssetID)
	f.ResolvedAt = cloneTime(f.ResolvedAt)
	f.DueDate = cloneTime(f.DueDate)
	f.DetectedAt = cloneTime(f.DetectedAt)
	return f
}

// SearchKey is the folded form of a title used for case-insensitive title search. Folding happens in Go so every
// backend matches non-ASCII titles the same way.
func SearchKey(title string) string {
	return strings.ToLower(title)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
