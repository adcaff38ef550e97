package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/agentcy/internal/domain/tactical"
)

func TestBuildSelectsTemplate(t *testing.T) {
	tests := []struct {
		category tactical.Category
		sections []string
	}{
		{tactical.CategoryMission, []string{"Mission classification", "Risk assessment", "Required resources", "tactical plan", "Contingency", "timeline", "military briefing"}},
		{tactical.CategoryIntel, []string{"Target identification", "OSINT", "Key findings", "Threat assessment", "Recommendations"}},
		{tactical.CategoryTactical, []string{"Mission objective", "Resource allocation", "Movement strategies", "Contingency", "timeline"}},
		{tactical.CategoryThreat, []string{"Threat identification", "Threat level", "Potential impact", "countermeasures", "Response plan"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			system, user, err := Build(tt.category, "hold the bridge")
			require.NoError(t, err)
			assert.Equal(t, "hold the bridge", user)
			assert.True(t, strings.HasPrefix(system, "You are AGENTCY.ONE"))
			for _, s := range tt.sections {
				assert.Contains(t, system, s)
			}
		})
	}
}

func TestBuildIsStable(t *testing.T) {
	a, _, err := Build(tactical.CategoryThreat, "one")
	require.NoError(t, err)
	b, _, err := Build(tactical.CategoryThreat, "two")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildInvalidCategory(t *testing.T) {
	_, _, err := Build(tactical.Category("LOGISTICS"), "x")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
