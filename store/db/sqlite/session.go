package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/weillium/ai-portfolio/store"
)

func (d *DB) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	fields := []string{"uid", "user_id", "agent_id", "title", "state"}
	args := []any{create.UID, create.UserID, create.AgentID, create.Title, create.State}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		args = append(args, create.CreatedTs)
	}
	if create.LastActiveTs != 0 {
		fields = append(fields, "last_active_ts")
		args = append(args, create.LastActiveTs)
	}

	stmt := `INSERT INTO session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, last_active_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.LastActiveTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return create, nil
}

func (d *DB) ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ID; v != nil {
			where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.UID; v != nil {
			where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.UserID; v != nil {
			where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.AgentID; v != nil {
			where, args = append(where, "agent_id = "+placeholder(len(args)+1)), append(args, *v)
		}
	}

	// Workspace ordering is most recently active first.
	query := `SELECT id, uid, user_id, agent_id, title, state, created_ts, last_active_ts
		FROM session WHERE ` + strings.Join(where, " AND ") + ` ORDER BY last_active_ts DESC, id DESC`
	if find != nil && find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Session, 0)
	for rows.Next() {
		session := &store.Session{}
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&session.UserID,
			&session.AgentID,
			&session.Title,
			&session.State,
			&session.CreatedTs,
			&session.LastActiveTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		list = append(list, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateSession(ctx context.Context, update *store.UpdateSession) (*store.Session, error) {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.State; v != nil {
		set, args = append(set, "state = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.LastActiveTs; v != nil {
		set, args = append(set, "last_active_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, user_id, agent_id, title, state, created_ts, last_active_ts`

	session := &store.Session{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&session.ID,
		&session.UID,
		&session.UserID,
		&session.AgentID,
		&session.Title,
		&session.State,
		&session.CreatedTs,
		&session.LastActiveTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (d *DB) DeleteSession(ctx context.Context, delete *store.DeleteSession) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM session WHERE id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
