package prompt

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/agentcy/internal/domain/tactical"
)

// ErrInvalidCategory is returned for a category with no instruction template.
var ErrInvalidCategory = errors.New("invalid category")

const missionInstruction = `You are AGENTCY.ONE, an advanced tactical military AI system.
Analyze the mission request and provide:
1. Mission classification (INTEL/TACTICAL/LOGISTICS/SECURITY)
2. Risk assessment (LOW/MODERATE/HIGH/CRITICAL)
3. Required resources and personnel
4. Step-by-step tactical plan
5. Contingency measures
6. Estimated timeline

Format your response as a structured military briefing.`

const intelInstruction = `You are AGENTCY.ONE, an advanced intelligence gathering AI.
Analyze the intel request and provide:
1. Target identification
2. Data sources (OSINT, SIGINT, HUMINT, GEOINT)
3. Key findings
4. Threat assessment
5. Recommendations for further action

Format your response as a structured intelligence report.`

const tacticalInstruction = `You are AGENTCY.ONE, an advanced tactical planning AI.
Analyze the planning request and provide:
1. Mission objective
2. Resource allocation
3. Movement strategies
4. Contingency measures
5. Estimated timeline

Format your response as a structured tactical plan.`

const threatInstruction = `You are AGENTCY.ONE, an advanced threat assessment AI.
Analyze the threat request and provide:
1. Threat identification
2. Threat level (LOW/MODERATE/HIGH/CRITICAL)
3. Potential impact
4. Recommended countermeasures
5. Response plan

Format your response as a structured threat assessment report.`

var instructions = map[tactical.Category]string{
	tactical.CategoryMission:  missionInstruction,
	tactical.CategoryIntel:    intelInstruction,
	tactical.CategoryTactical: tacticalInstruction,
	tactical.CategoryThreat:   threatInstruction,
}

// GetSystemPrompt returns the fixed instruction template for a category.
func GetSystemPrompt(c tactical.Category) (string, error) {
	s, ok := instructions[c]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	return s, nil
}

// Build returns the system instruction and user content for one request.
// The content is passed through untouched.
func Build(c tactical.Category, content string) (string, string, error) {
	system, err := GetSystemPrompt(c)
	if err != nil {
		return "", "", err
	}
	return system, content, nil
}
