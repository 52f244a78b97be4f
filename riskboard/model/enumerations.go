package model

import (
	"strings"

	"github.com/scylladb/go-set/strset"
)

// Severity is the reported severity of a finding, independent of the asset it was found on.
type Severity string

const (
	UnknownSeverity  Severity = ""
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// AllSeverities is ordered from most to least severe.
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

func ParseSeverity(s string) Severity {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(SeverityCritical):
		return SeverityCritical
	case string(SeverityHigh):
		return SeverityHigh
	case string(SeverityMedium):
		return SeverityMedium
	case string(SeverityLow):
		return SeverityLow
	case string(SeverityInfo):
		return SeverityInfo
	default:
		return UnknownSeverity
	}
}

func (s Severity) String() string {
	return string(s)
}

// Status is the remediation state of a finding. The store treats it as a label only; workflow rules belong to callers.
type Status string

const (
	UnknownStatus       Status = ""
	StatusOpen          Status = "open"
	StatusInProgress    Status = "in_progress"
	StatusResolved      Status = "resolved"
	StatusAccepted      Status = "accepted"
	StatusFalsePositive Status = "false_positive"
)

func AllStatuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved, StatusAccepted, StatusFalsePositive}
}

func ParseStatus(s string) Status {
	v := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), "-", "_")
	switch v {
	case string(StatusOpen):
		return StatusOpen
	case string(StatusInProgress):
		return StatusInProgress
	case string(StatusResolved):
		return StatusResolved
	case string(StatusAccepted):
		return StatusAccepted
	case string(StatusFalsePositive):
		return StatusFalsePositive
	default:
		return UnknownStatus
	}
}

// Active reports whether the finding still needs work (open or in progress).
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusInProgress
}

func (s Status) String() string {
	return string(s)
}

// Criticality is the business importance of an asset, used as a risk multiplier.
type Criticality string

const (
	UnknownCriticality  Criticality = ""
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

func ParseCriticality(s string) Criticality {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(CriticalityCritical):
		return CriticalityCritical
	case string(CriticalityHigh):
		return CriticalityHigh
	case string(CriticalityMedium):
		return CriticalityMedium
	case string(CriticalityLow):
		return CriticalityLow
	default:
		return UnknownCriticality
	}
}

func (c Criticality) String() string {
	return string(c)
}

// AssetCategory is the kind of thing an asset is.
type AssetCategory string

const (
	AssetCategoryServer        AssetCategory = "server"
	AssetCategoryWorkstation   AssetCategory = "workstation"
	AssetCategoryNetworkDevice AssetCategory = "network_device"
	AssetCategoryApplication   AssetCategory = "application"
	AssetCategoryDatabase      AssetCategory = "database"
	AssetCategoryCloudResource AssetCategory = "cloud_resource"
	AssetCategoryContainer     AssetCategory = "container"
	AssetCategoryOther         AssetCategory = "other"
)

var assetCategories = strset.New(
	string(AssetCategoryServer),
	string(AssetCategoryWorkstation),
	string(AssetCategoryNetworkDevice),
	string(AssetCategoryApplication),
	string(AssetCategoryDatabase),
	string(AssetCategoryCloudResource),
	string(AssetCategoryContainer),
	string(AssetCategoryOther),
)

// ParseAssetCategory returns the matching category and whether the value was recognized.
func ParseAssetCategory(s string) (AssetCategory, bool) {
	v := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), "-", "_")
	if !assetCategories.Has(v) {
		return "", false
	}
	return AssetCategory(v), true
}

// EntityType names the kind of record an activity entry refers to.
type EntityType string

const (
	EntityFinding EntityType = "finding"
	EntityAsset   EntityType = "asset"
)

// Action is the verb recorded in the activity log.
type Action string

const (
	ActionCreated        Action = "created"
	ActionUpdated        Action = "updated"
	ActionBulkUpdated    Action = "bulk_updated"
	ActionImported       Action = "imported"
	ActionDeleted        Action = "deleted"
	ActionTicketAttached Action = "ticket_attached"
	ActionRescored       Action = "rescored"
)
