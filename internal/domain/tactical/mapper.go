package tactical

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// IDTimeLayout is the UTC timestamp part of a record id.
const IDTimeLayout = "20060102-150405.000000"

const maxThreatName = 120

// DefaultMissionAgents are assigned to every new mission.
var DefaultMissionAgents = []string{"INTEL-01", "TACTICAL-02"}

// NewID builds "<CATEGORY>-<UTC timestamp>".
func NewID(c Category, now time.Time) string {
	return fmt.Sprintf("%s-%s", c, now.UTC().Format(IDTimeLayout))
}

// MapResponse turns gateway text into a fresh domain record. It does no I/O.
// The only error is ErrUnknownCategory, which the API router cannot
// trigger: its route table only carries the four request categories.
func MapResponse(c Category, content, text string, now time.Time) (Record, error) {
	now = now.UTC()
	h := Header{
		ID:             NewID(c, now),
		Classification: ClassificationConfidential,
		AIAnalysis:     text,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch c {
	case CategoryMission:
		h.Status = StatusPlanning
		return &Mission{
			Header:            h,
			Description:       content,
			RiskLevel:         RiskModerate,
			Priority:          PriorityNormal,
			AssignedAgents:    append([]string(nil), DefaultMissionAgents...),
			RequiredResources: []string{},
		}, nil
	case CategoryIntel:
		h.Status = StatusDraft
		return &IntelReport{
			Header:        h,
			Target:        content,
			IntelType:     IntelTypeGeneral,
			ReportContent: text,
			SourceAgent:   "INTEL-01",
		}, nil
	case CategoryTactical:
		h.Status = StatusDraft
		return &TacticalPlan{
			Header:      h,
			Objective:   content,
			PlanContent: text,
		}, nil
	case CategoryThreat:
		h.Status = StatusActive
		return &ThreatAssessment{
			Header:            h,
			ThreatName:        threatName(content),
			ThreatLevel:       ThreatModerate,
			Description:       content,
			AssignedPersonnel: []string{},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

// threatName is the first line of the request, capped in length.
func threatName(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= maxThreatName {
		return line
	}
	return string([]rune(line)[:maxThreatName])
}
