package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/weillium/ai-portfolio/store"
)

func (d *DB) CreateAgent(ctx context.Context, create *store.Agent) (*store.Agent, error) {
	fields := []string{"uid", "name", "description", "type", "icon", "config"}
	args := []any{create.UID, create.Name, create.Description, create.Type, create.Icon, create.Config}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		args = append(args, create.CreatedTs)
	}

	stmt := `INSERT INTO agent (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return create, nil
}

func (d *DB) ListAgents(ctx context.Context, find *store.FindAgent) ([]*store.Agent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ID; v != nil {
			where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.UID; v != nil {
			where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.Type; v != nil {
			where, args = append(where, "type = "+placeholder(len(args)+1)), append(args, *v)
		}
	}

	// Registry ordering is creation order, oldest first.
	query := `SELECT id, uid, name, description, type, icon, config, created_ts
		FROM agent WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC, id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Agent, 0)
	for rows.Next() {
		agent := &store.Agent{}
		if err := rows.Scan(
			&agent.ID,
			&agent.UID,
			&agent.Name,
			&agent.Description,
			&agent.Type,
			&agent.Icon,
			&agent.Config,
			&agent.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		list = append(list, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateAgent(ctx context.Context, update *store.UpdateAgent) (*store.Agent, error) {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Type; v != nil {
		set, args = append(set, "type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Icon; v != nil {
		set, args = append(set, "icon = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Config; v != nil {
		set, args = append(set, "config = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE agent SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, name, description, type, icon, config, created_ts`

	agent := &store.Agent{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&agent.ID,
		&agent.UID,
		&agent.Name,
		&agent.Description,
		&agent.Type,
		&agent.Icon,
		&agent.Config,
		&agent.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return agent, nil
}

func (d *DB) DeleteAgent(ctx context.Context, delete *store.DeleteAgent) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM agent WHERE id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	return nil
}
