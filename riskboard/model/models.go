package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// Models returns every persisted record type, in migration order.
func Models() []any {
	return []any{
		&Asset{},
		&Finding{},
		&ActivityLogEntry{},
	}
}

// assets //////////////////////////////////////////////////////

// Asset is a thing findings are reported against (a host, an application, a cloud resource...).
type Asset struct {
	ID          string        `json:"id" gorm:"column:id;primaryKey"`
	Name        string        `json:"name" gorm:"column:name;not null;index"`
	Category    AssetCategory `json:"category" gorm:"column:category;not null"`
	Criticality Criticality   `json:"criticality" gorm:"column:criticality;not null"`
	Environment string        `json:"environment,omitempty" gorm:"column:environment"`
	Hostname    string        `json:"hostname,omitempty" gorm:"column:hostname"`
	IPAddress   string        `json:"ip_address,omitempty" gorm:"column:ip_address"`
	CreatedAt   time.Time     `json:"created_at" gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (Asset) TableName() string {
	return "assets"
}

// NewAsset is the payload for creating an asset.
type NewAsset struct {
	Name        string        `json:"name"`
	Category    AssetCategory `json:"category"`
	Criticality Criticality   `json:"criticality"`
	Environment string        `json:"environment,omitempty"`
	Hostname    string        `json:"hostname,omitempty"`
	IPAddress   string        `json:"ip_address,omitempty"`
}

// findings //////////////////////////////////////////////////////

// Finding is a single reported vulnerability instance, loosely tied to an asset.
type Finding struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;not null;index:idx_findings_priority,priority:2;autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;not null;autoUpdateTime:false"`

	Title       string   `json:"title" gorm:"column:title;not null"`
	Description string   `json:"description,omitempty" gorm:"column:description"`
	CVE         string   `json:"cve,omitempty" gorm:"column:cve;index"`
	CWE         string   `json:"cwe,omitempty" gorm:"column:cwe"`
	Severity    Severity `json:"severity" gorm:"column:severity;not null;index"`
	CVSSScore   *float64 `json:"cvss_score,omitempty" gorm:"column:cvss_score"`

	// TitleSearch is the folded title that title search matches against.
	TitleSearch string `json:"-" gorm:"column:title_search;not null;default:''"`

	// AssetID is a soft reference: the asset may since have been deleted.
	AssetID *string `json:"asset_id,omitempty" gorm:"column:asset_id;index"`
	Source  string  `json:"source" gorm:"column:source"`

	RiskScore        int  `json:"risk_score" gorm:"column:risk_score;not null;index:idx_findings_priority,priority:1"`
	ExploitAvailable bool `json:"exploit_available" gorm:"column:exploit_available;not null"`

	Status           Status     `json:"status" gorm:"column:status;not null;index"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty" gorm:"column:resolved_at"`
	Assignee         string     `json:"assignee,omitempty" gorm:"column:assignee;index"`
	RemediationNotes string     `json:"remediation_notes,omitempty" gorm:"column:remediation_notes"`
	DueDate          *time.Time `json:"due_date,omitempty" gorm:"column:due_date"`

	// DetectedAt is when the scanner first saw the issue, which can predate CreatedAt for imported findings.
	DetectedAt  *time.Time `json:"detected_at,omitempty" gorm:"column:detected_at"`
	Fingerprint string     `json:"fingerprint" gorm:"column:fingerprint;index"`

	TicketKey    string `json:"ticket_key,omitempty" gorm:"column:ticket_key"`
	TicketStatus string `json:"ticket_status,omitempty" gorm:"column:ticket_status"`
	TicketURL    string `json:"ticket_url,omitempty" gorm:"column:ticket_url"`
}

func (Finding) TableName() string {
	return "findings"
}

func (f Finding) HasTicket() bool {
	return f.TicketKey != ""
}

// AgeStart is the moment the finding's age is measured from.
func (f Finding) AgeStart() time.Time {
	if f.DetectedAt != nil && !f.DetectedAt.IsZero() {
		return *f.DetectedAt
	}
	return f.CreatedAt
}

// DaysOpen is the number of whole days between AgeStart and now (never negative).
func (f Finding) DaysOpen(now time.Time) int {
	days := int(now.Sub(f.AgeStart()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NewFinding is the payload for creating a finding, either directly or through an import.
type NewFinding struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	CVE              string     `json:"cve,omitempty"`
	CWE              string     `json:"cwe,omitempty"`
	Severity         Severity   `json:"severity"`
	CVSSScore        *float64   `json:"cvss_score,omitempty"`
	AssetID          *string    `json:"asset_id,omitempty"`
	Source           string     `json:"source,omitempty"`
	ExploitAvailable bool       `json:"exploit_available"`
	Assignee         string     `json:"assignee,omitempty"`
	RemediationNotes string     `json:"remediation_notes,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DetectedAt       *time.Time `json:"detected_at,omitempty"`
}

// Fingerprint is a stable digest of the identifying fields of a finding (title, CVE, asset and source).
func (n NewFinding) Fingerprint() string {
	asset := ""
	if n.AssetID != nil {
		asset = *n.AssetID
	}
	key := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(n.Title)),
		strings.ToUpper(strings.TrimSpace(n.CVE)),
		asset,
		strings.ToLower(strings.TrimSpace(n.Source)),
	}, "\x00")

	h := xxhash.New64()
	// writes to a hash never fail
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("xxh64:%x", h.Sum(nil))
}

// Ticket is the external-ticket reference produced by a ticketing integration.
type Ticket struct {
	Key    string `json:"key"`
	Status string `json:"status,omitempty"`
	URL    string `json:"url,omitempty"`
}

// activity //////////////////////////////////////////////////////

// ActivityLogEntry is one append-only audit record. Entries outlive the entities they describe.
type ActivityLogEntry struct {
	ID         int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	EntityType EntityType `json:"entity_type" gorm:"column:entity_type;not null;index:idx_activity_entity,priority:1"`
	EntityID   string     `json:"entity_id" gorm:"column:entity_id;not null;index:idx_activity_entity,priority:2"`
	Action     Action     `json:"action" gorm:"column:action;not null"`
	Details    string     `json:"details,omitempty" gorm:"column:details"`
	Actor      string     `json:"actor,omitempty" gorm:"column:actor"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;not null;index;autoCreateTime:false"`
}

func (ActivityLogEntry) TableName() string {
	return "activity_log"
}
