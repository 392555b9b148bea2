package auditlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	query :=
		`INSERT INTO audit_log (timestamp, actor_id, action, resource_type, resource_id,
			ip_address, user_agent, success, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	details := []byte(e.Details)
	if len(details) == 0 {
		details = []byte("{}")
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Timestamp, e.ActorID, string(e.Action), e.ResourceType, e.ResourceID,
		e.IPAddress, e.UserAgent, e.Success, details,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Query(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	query, args := buildQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var action string
		var details []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &action, &e.ResourceType, &e.ResourceID,
			&e.IPAddress, &e.UserAgent, &e.Success, &details); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Action = models.AuditAction(action)
		e.Details = details
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// buildQuery filters only on indexed columns.
func buildQuery(f models.AuditFilter) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}
	if f.ResourceType != "" {
		add("resource_type = $%d", f.ResourceType)
	}
	if !f.From.IsZero() {
		add("timestamp >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("timestamp < $%d", f.To)
	}

	var b strings.Builder
	b.WriteString(`SELECT id, timestamp, actor_id, action, resource_type, resource_id, ip_address, user_agent, success, details FROM audit_log`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, ClampLimit(f.Limit))
	fmt.Fprintf(&b, " ORDER BY timestamp DESC, id DESC LIMIT $%d", len(args))

	return b.String(), args
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
