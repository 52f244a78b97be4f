package store

import (
	"sort"
	"strings"

	"github.com/anchore/riskboard/riskboard/model"
)

// compareFunc returns -1 if a should come before b, 1 if after, 0 if equal for this comparison
type compareFunc func(a, b model.Finding) int

// priorityOrder is the "what to fix first" ordering: risk score descending, then newest first. The id comparison only
// makes the order total so that pagination is stable.
var priorityOrder = []compareFunc{
	compareByRiskScore,
	compareByCreatedAt,
	compareByID,
}

func compareByRiskScore(a, b model.Finding) int {
	switch {
	case a.RiskScore > b.RiskScore:
		return -1
	case a.RiskScore < b.RiskScore:
		return 1
	}
	return 0
}

func compareByCreatedAt(a, b model.Finding) int {
	switch {
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case a.CreatedAt.Before(b.CreatedAt):
		return 1
	}
	return 0
}

func compareByID(a, b model.Finding) int {
	return strings.Compare(a.ID, b.ID)
}

// SortFindings orders findings by priority in place.
func SortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		for _, compare := range priorityOrder {
			if result := compare(findings[i], findings[j]); result != 0 {
				return result < 0
			}
		}
		return false
	})
}

// OrderClauses is the same ordering expressed as SQL ORDER BY terms.
func OrderClauses() []string {
	return []string{"risk_score DESC", "created_at DESC", "id ASC"}
}

// SortAssets orders assets by name, then id.
func SortAssets(assets []model.Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].Name != assets[j].Name {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].ID < assets[j].ID
	})
}
