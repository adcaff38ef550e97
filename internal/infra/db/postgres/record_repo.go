package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/agentcy/internal/domain/tactical"
)

type RecordRepository struct{ db *sql.DB }

func NewRecordRepository(db *sql.DB) *RecordRepository { return &RecordRepository{db: db} }

// Create insert tactical record baru
func (r *RecordRepository) Create(ctx context.Context, rec domain.Record) error {
	const q = `
INSERT INTO tactical_records
(id, category, classification, status, request_content, ai_analysis, payload_json, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	h := rec.Meta()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", h.ID, err)
	}
	_, err = r.db.ExecContext(ctx, q,
		h.ID, string(rec.Category()), stringOrDash(string(h.Classification)), stringOrDash(h.Status),
		rec.Subject(), h.AIAnalysis, string(payload), h.CreatedAt, h.UpdatedAt,
	)
	return err
}

// Get by ID
func (r *RecordRepository) Get(ctx context.Context, id string) (domain.Record, error) {
	c, err := domain.CategoryFromID(id)
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = r.db.QueryRowContext(ctx, `SELECT payload_json FROM tactical_records WHERE id=$1 LIMIT 1;`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return domain.Decode(c, payload)
}

// Update overwrite status, analysis dan payload
func (r *RecordRepository) Update(ctx context.Context, rec domain.Record) error {
	const q = `
UPDATE tactical_records
SET classification=$1, status=$2, ai_analysis=$3, payload_json=$4, updated_at=$5
WHERE id=$6;`

	h := rec.Meta()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", h.ID, err)
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(string(h.Classification)), stringOrDash(h.Status), h.AIAnalysis, string(payload), h.UpdatedAt, h.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, h.ID)
	}
	return nil
}

// Agents reads the agent_status board in board order. An empty table
// yields the seed roster.
func (r *RecordRepository) Agents(ctx context.Context) ([]domain.AgentStatus, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, status, current_mission, capabilities
FROM agent_status ORDER BY position, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AgentStatus
	for rows.Next() {
		var a domain.AgentStatus
		var mission sql.NullString
		var caps []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Status, &mission, &caps); err != nil {
			return nil, err
		}
		a.CurrentMission = mission.String
		a.Capabilities = []string{}
		if len(strings.TrimSpace(string(caps))) > 0 {
			if err := json.Unmarshal(caps, &a.Capabilities); err != nil {
				return nil, fmt.Errorf("agent %s: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return domain.DefaultRoster().Agents(ctx)
	}
	return out, nil
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// SeedAgents fills an empty agent_status table with the seed roster,
// keeping its order in the position column.
func (r *RecordRepository) SeedAgents(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_status;`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seed, _ := domain.DefaultRoster().Agents(ctx)
	for i, a := range seed {
		caps, err := json.Marshal(a.Capabilities)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO agent_status (id, name, position, status, current_mission, capabilities)
VALUES ($1,$2,$3,$4,$5,$6);`, a.ID, a.Name, i+1, a.Status, a.CurrentMission, string(caps)); err != nil {
			return fmt.Errorf("seed agent %s: %w", a.ID, err)
		}
	}
	return nil
}
