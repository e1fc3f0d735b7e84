package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/syedrazahussain/celebratemate/internal/model"
)

type PostgresEventRepo struct {
	db *sql.DB
}

func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// naiveTimestamp renders t as a zone-less timestamp literal so it compares
// against (date + time), which the schema stores without a zone.
func naiveTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// The sent_at IS NULL predicate in both statements below is what makes a
// delivered event drop out of selection and keeps the marker write-once.
const dueBetweenQuery = `
	SELECT e.id, e.user_id, e.name, e.type,
	       e.date, to_char(e.time, 'HH24:MI'),
	       e.mobile, e.email, e.message, e.sent_at, e.created_at,
	       u.name AS sender_name, u.email AS sender_email
	FROM events e
	JOIN users u ON u.id = e.user_id
	WHERE (e.date + e.time) >= $1::timestamp
	  AND (e.date + e.time) < $2::timestamp
	  AND e.sent_at IS NULL
`

const markSentQuery = `
	UPDATE events
	SET sent_at = $2
	WHERE id = $1 AND sent_at IS NULL
`

func (r *PostgresEventRepo) DueBetween(ctx context.Context, from, to time.Time) ([]model.DueEvent, error) {
	rows, err := r.db.QueryContext(ctx, dueBetweenQuery, naiveTimestamp(from), naiveTimestamp(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DueEvent
	for rows.Next() {
		var ev model.DueEvent
		var mobile, email sql.NullString
		var sentAt sql.NullTime

		if err := rows.Scan(
			&ev.ID,
			&ev.UserID,
			&ev.Name,
			&ev.Type,
			&ev.Date,
			&ev.Time,
			&mobile,
			&email,
			&ev.Message,
			&sentAt,
			&ev.CreatedAt,
			&ev.SenderName,
			&ev.SenderEmail,
		); err != nil {
			return nil, err
		}

		if mobile.Valid && mobile.String != "" {
			s := mobile.String
			ev.Mobile = &s
		}
		if email.Valid && email.String != "" {
			s := email.String
			ev.Email = &s
		}
		if sentAt.Valid {
			t := sentAt.Time
			ev.SentAt = &t
		}

		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *PostgresEventRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Zero rows affected means already sent; not an error.
	_, err := r.db.ExecContext(ctx, markSentQuery, id, at.UTC())
	return err
}

func (r *PostgresEventRepo) ListPending(ctx context.Context, limit, offset int) ([]model.Event, error) {
	return r.list(ctx, `
		SELECT id, user_id, name, type,
		       date, to_char(time, 'HH24:MI'),
		       mobile, email, message, sent_at, created_at
		FROM events
		WHERE sent_at IS NULL
		ORDER BY date ASC, time ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *PostgresEventRepo) ListSent(ctx context.Context, limit, offset int) ([]model.Event, error) {
	return r.list(ctx, `
		SELECT id, user_id, name, type,
		       date, to_char(time, 'HH24:MI'),
		       mobile, email, message, sent_at, created_at
		FROM events
		WHERE sent_at IS NOT NULL
		ORDER BY sent_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *PostgresEventRepo) list(ctx context.Context, query string, limit, offset int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var mobile, email sql.NullString
		var sentAt sql.NullTime

		if err := rows.Scan(
			&ev.ID,
			&ev.UserID,
			&ev.Name,
			&ev.Type,
			&ev.Date,
			&ev.Time,
			&mobile,
			&email,
			&ev.Message,
			&sentAt,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}

		if mobile.Valid && mobile.String != "" {
			s := mobile.String
			ev.Mobile = &s
		}
		if email.Valid && email.String != "" {
			s := email.String
			ev.Email = &s
		}
		if sentAt.Valid {
			t := sentAt.Time
			ev.SentAt = &t
		}

		out = append(out, ev)
	}
	return out, rows.Err()
}
