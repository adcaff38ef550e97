package tactical

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category enum
type Category string

const (
	CategoryMission  Category = "MISSION"
	CategoryIntel    Category = "INTEL"
	CategoryTactical Category = "TACTICAL"
	CategoryThreat   Category = "THREAT"
)

// Classification enum
type Classification string

const (
	ClassificationUnclassified Classification = "UNCLASSIFIED"
	ClassificationConfidential Classification = "CONFIDENTIAL"
	ClassificationSecret       Classification = "SECRET"
	ClassificationTopSecret    Classification = "TOP_SECRET"
)

// Default status values per record kind
const (
	StatusPlanning = "PLANNING"
	StatusDraft    = "DRAFT"
	StatusActive   = "ACTIVE"

	RiskModerate     = "MODERATE"
	PriorityNormal   = "NORMAL"
	ThreatModerate   = "MODERATE"
	IntelTypeGeneral = "GENERAL"
)

// ErrUnknownCategory is returned for a category outside the four request kinds.
var ErrUnknownCategory = errors.New("unknown category")

// ErrRecordNotFound is returned by stores when no record matches an id.
var ErrRecordNotFound = errors.New("record not found")

// ParseCategory maps a string onto one of the four request categories.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryMission, CategoryIntel, CategoryTactical, CategoryThreat:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// CategoryFromID recovers the category prefix of a record id.
func CategoryFromID(id string) (Category, error) {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("%w: malformed id %q", ErrUnknownCategory, id)
	}
	return ParseCategory(prefix)
}

// Header holds the attributes every domain record shares.
type Header struct {
	ID             string         `json:"id"`
	Classification Classification `json:"classification"`
	Status         string         `json:"status"`
	AIAnalysis     string         `json:"ai_analysis"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Meta exposes the shared header to stores and archives.
func (h *Header) Meta() *Header { return h }

// Touch refreshes updated_at.
func (h *Header) Touch(now time.Time) { h.UpdatedAt = now.UTC() }

// Record is one of Mission, IntelReport, ThreatAssessment or TacticalPlan.
type Record interface {
	Category() Category
	Meta() *Header
	// Subject is the operator text the record was produced from.
	Subject() string
}

type Mission struct {
	Header
	Description        string   `json:"description"`
	RiskLevel          string   `json:"risk_level"`
	Priority           string   `json:"priority"`
	Objective          string   `json:"objective"`
	TacticalPlan       string   `json:"tactical_plan"`
	AssignedAgents     []string `json:"assigned_agents"`
	RequiredResources  []string `json:"required_resources"`
	ProgressPercentage int      `json:"progress_percentage"`
	CurrentPhase       string   `json:"current_phase"`
	// StartTime and EndTime stay null until the mission is scheduled.
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

func (*Mission) Category() Category { return CategoryMission }
func (m *Mission) Subject() string  { return m.Description }

type IntelReport struct {
	Header
	Target           string `json:"target"`
	IntelType        string `json:"intel_type"`
	ReportContent    string `json:"report_content"`
	KeyFindings      string `json:"key_findings"`
	ThreatAssessment string `json:"threat_assessment"`
	Recommendations  string `json:"recommendations"`
	SourceAgent      string `json:"source_agent"`
	ConfidenceLevel  string `json:"confidence_level"`
	MissionID        string `json:"mission_id,omitempty"`
}

func (*IntelReport) Category() Category { return CategoryIntel }
func (r *IntelReport) Subject() string  { return r.Target }

type ThreatAssessment struct {
	Header
	ThreatName       string `json:"threat_name"`
	ThreatType       string `json:"threat_type"`
	ThreatLevel      string `json:"threat_level"`
	Description      string `json:"description"`
	ImpactAssessment string `json:"impact_assessment"`
	Countermeasures  string `json:"countermeasures"`
	ResponsePlan     string `json:"response_plan"`
	Location         string `json:"location"`
	Probability      string `json:"probability"`
	// AssignedPersonnel lists agent ids; empty until someone is tasked.
	AssignedPersonnel []string `json:"assigned_personnel"`
	MissionID         string   `json:"mission_id,omitempty"`
}

func (*ThreatAssessment) Category() Category { return CategoryThreat }
func (a *ThreatAssessment) Subject() string  { return a.Description }

type TacticalPlan struct {
	Header
	Objective   string `json:"objective"`
	PlanContent string `json:"plan_content"`
	MissionID   string `json:"mission_id,omitempty"`
}

func (*TacticalPlan) Category() Category { return CategoryTactical }
func (p *TacticalPlan) Subject() string  { return p.Objective }

// Decode rebuilds a record of the given category from its JSON form.
func Decode(c Category, payload []byte) (Record, error) {
	var r Record
	switch c {
	case CategoryMission:
		r = &Mission{}
	case CategoryIntel:
		r = &IntelReport{}
	case CategoryTactical:
		r = &TacticalPlan{}
	case CategoryThreat:
		r = &ThreatAssessment{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	if err := json.Unmarshal(payload, r); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", c, err)
	}
	return r, nil
}
