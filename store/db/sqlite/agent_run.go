package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/weillium/ai-portfolio/store"
)

func (d *DB) CreateAgentRun(ctx context.Context, create *store.AgentRun) (*store.AgentRun, error) {
	fields := []string{"session_id", "agent_id", "user_id", "input", "output", "tokens_used", "cost_estimate"}
	args := []any{create.SessionID, create.AgentID, create.UserID, create.Input, create.Output, create.TokensUsed, create.CostEstimate}

	stmt := `INSERT INTO agent_run (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create agent_run: %w", err)
	}

	return create, nil
}

func (d *DB) ListAgentRuns(ctx context.Context, find *store.FindAgentRun) ([]*store.AgentRun, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.SessionID; v != nil {
			where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.AgentID; v != nil {
			where, args = append(where, "agent_id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.UserID; v != nil {
			where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
		}
	}

	query := `SELECT id, session_id, agent_id, user_id, input, output, tokens_used, cost_estimate, created_ts
		FROM agent_run WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find != nil && find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent_runs: %w", err)
	}
	defer rows.Close()

	list := make([]*store.AgentRun, 0)
	for rows.Next() {
		run := &store.AgentRun{}
		if err := rows.Scan(
			&run.ID,
			&run.SessionID,
			&run.AgentID,
			&run.UserID,
			&run.Input,
			&run.Output,
			&run.TokensUsed,
			&run.CostEstimate,
			&run.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agent_run: %w", err)
		}
		list = append(list, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agent_runs: %w", err)
	}

	return list, nil
}
