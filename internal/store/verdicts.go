package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"veredito/internal/verdict"
)

// Record is one persisted verdict row.
type Record struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Engine         string          `json:"engine"`
	Verdict        verdict.Verdict `json:"verdict"`
	CreatedAt      time.Time       `json:"created_at"`
}

// WriteVerdict inserts one verdict and returns its generated id.
func (s *Store) WriteVerdict(ctx context.Context, conversationID, engine string, v verdict.Verdict) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO verdicts (id, conversation_id, engine, acao_necessaria, tipo_falha, motivo_transbordo, descricao, acao_sugerida, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		id, conversationID, engine, v.ActionRequired, v.FailureType, v.TransferReason, v.Description, v.SuggestedFix,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert verdict: %w", err)
	}
	return id, nil
}

// ListVerdicts returns the most recent verdicts, newest first. When
// onlyActionRequired is set, rows with acao_necessaria=false are excluded.
func (s *Store) ListVerdicts(ctx context.Context, limit int, onlyActionRequired bool) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, engine, acao_necessaria, tipo_falha, motivo_transbordo, descricao, acao_sugerida, created_at
		FROM verdicts
		WHERE (NOT $2::bool) OR acao_necessaria
		ORDER BY created_at DESC
		LIMIT $1`,
		limit, onlyActionRequired,
	)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.ConversationID, &r.Engine,
			&r.Verdict.ActionRequired, &r.Verdict.FailureType, &r.Verdict.TransferReason,
			&r.Verdict.Description, &r.Verdict.SuggestedFix, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByFailureType aggregates stored verdicts per tipo_falha, for the
// status endpoint.
func (s *Store) CountByFailureType(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tipo_falha, count(*) FROM verdicts GROUP BY tipo_falha`)
	if err != nil {
		return nil, fmt.Errorf("count verdicts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ft string
		var n int
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[ft] = n
	}
	return counts, rows.Err()
}
