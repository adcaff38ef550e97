package tactical

import "context"

// RecordStore port (interface untuk persistence)
type RecordStore interface {
	Create(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, r Record) error
}

// AgentRoster port for the agent status board
type AgentRoster interface {
	Agents(ctx context.Context) ([]AgentStatus, error)
}

// BriefingArchive port (interface untuk penyimpanan briefing)
type BriefingArchive interface {
	Archive(ctx context.Context, r Record) (string, error)
}
