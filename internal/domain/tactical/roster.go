package tactical

import "context"

const AgentOffline = "OFFLINE"

// AgentStatus is one field agent known to the system.
type AgentStatus struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	CurrentMission string   `json:"current_mission"`
	Capabilities   []string `json:"capabilities"`
}

// StaticRoster serves a fixed agent list.
type StaticRoster []AgentStatus

func (s StaticRoster) Agents(context.Context) ([]AgentStatus, error) {
	out := make([]AgentStatus, len(s))
	copy(out, s)
	return out, nil
}

// DefaultRoster is the seed roster used when no store provides one.
func DefaultRoster() StaticRoster {
	return StaticRoster{
		{ID: "INTEL-01", Name: "Intelligence Agent Alpha", Status: "OPERATIONAL", CurrentMission: "SIGINT Analysis", Capabilities: []string{"OSINT", "SIGINT", "Data Analysis"}},
		{ID: "TACTICAL-02", Name: "Tactical Planning Agent", Status: "OPERATIONAL", CurrentMission: "Route Optimization", Capabilities: []string{"Mission Planning", "Terrain Analysis", "Resource Allocation"}},
		{ID: "LOGISTICS-03", Name: "Logistics Coordination Agent", Status: "WARNING", CurrentMission: "Supply Chain Analysis", Capabilities: []string{"Supply Management", "Transportation", "Inventory"}},
		{ID: "COMMS-04", Name: "Communications Agent", Status: "OPERATIONAL", CurrentMission: "Secure Channel Maintenance", Capabilities: []string{"Secure Communications", "Encryption", "Signal Processing"}},
		{ID: "ANALYSIS-05", Name: "Data Analysis Agent", Status: "OPERATIONAL", CurrentMission: "Pattern Recognition", Capabilities: []string{"Data Mining", "Pattern Analysis", "Predictive Modeling"}},
		{ID: "SECURITY-06", Name: "Security Monitoring Agent", Status: "CRITICAL", CurrentMission: "Threat Detection", Capabilities: []string{"Threat Detection", "Vulnerability Assessment", "Incident Response"}},
	}
}
