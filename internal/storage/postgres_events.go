package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"syncalendar/internal/models"
)

const eventColumns = `e.id, e.title, e.description, e.start_datetime, e.end_datetime, e.location,
	e.color, e.is_all_day, e.is_public, e.created_by, e.recurrence, e.external_id,
	e.created_at, e.updated_at`

const visibleTo = `(e.is_public OR e.created_by = $1 OR EXISTS (
	SELECT 1 FROM event_participants ep WHERE ep.event_id = e.id AND ep.user_id = $1))`

func scanEvent(row pgx.Row) (models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Start,
		&event.End,
		&event.Location,
		&event.Color,
		&event.IsAllDay,
		&event.IsPublic,
		&event.CreatedBy,
		&event.Recurrence,
		&event.ExternalID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	event.Participants = []models.Participant{}
	return event, err
}

func (p *Postgres) ListEvents(ctx context.Context, userID string) ([]models.Event, error) {
	op := "internal/storage/postgres_events.go ListEvents"

	sql_query := `
	SELECT ` + eventColumns + ` FROM events e
	WHERE ` + visibleTo + `
	ORDER BY e.start_datetime, e.id;
	`

	return p.queryEvents(ctx, op, sql_query, userID)
}

func (p *Postgres) ListEventsRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	op := "internal/storage/postgres_events.go ListEventsRange"

	sql_query := `
	SELECT ` + eventColumns + ` FROM events e
	WHERE ` + visibleTo + `
	AND e.start_datetime < $3
	AND (e.recurrence <> '' OR e.start_datetime >= $2)
	ORDER BY e.start_datetime, e.id;
	`

	return p.queryEvents(ctx, op, sql_query, userID, from, to)
}

func (p *Postgres) queryEvents(ctx context.Context, op, sql_query string, args ...any) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, sql_query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}

	if err := p.loadParticipants(ctx, events); err != nil {
		return nil, mapError(op, err)
	}
	return events, nil
}

// loadParticipants fills the participant users of events with one query.
func (p *Postgres) loadParticipants(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	index := make(map[string]int, len(events))
	ids := make([]string, 0, len(events))
	for i, e := range events {
		index[e.ID] = i
		ids = append(ids, e.ID)
	}

	sql_query := `
	SELECT ep.event_id, u.id, u.email, u.name, u.avatar
	FROM event_participants ep
	JOIN users u ON u.id = ep.user_id
	WHERE ep.event_id = ANY($1)
	ORDER BY ep.event_id, ep.position;
	`

	rows, err := p.pool.Query(ctx, sql_query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var user models.User
		if err := rows.Scan(&eventID, &user.ID, &user.Email, &user.Name, &user.Avatar); err != nil {
			return err
		}
		i := index[eventID]
		events[i].Participants = append(events[i].Participants, models.Participant{User: user})
	}
	return rows.Err()
}

func (p *Postgres) GetEvent(ctx context.Context, id string) (models.Event, error) {
	op := "internal/storage/postgres_events.go GetEvent"

	sql_query := `
	SELECT ` + eventColumns + ` FROM events e
	WHERE e.id = $1;
	`

	event, err := scanEvent(p.pool.QueryRow(ctx, sql_query, id))
	if err != nil {
		return models.Event{}, mapError(op, err)
	}

	events := []models.Event{event}
	if err := p.loadParticipants(ctx, events); err != nil {
		return models.Event{}, mapError(op, err)
	}
	return events[0], nil
}

func (p *Postgres) CreateEvent(ctx context.Context, event *models.Event) error {
	op := "internal/storage/postgres_events.go CreateEvent"

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return mapError(op, err)
	}
	defer tx.Rollback(ctx)

	sql_query := `
	INSERT INTO events
	(id, title, description, start_datetime, end_datetime, location, color,
	 is_all_day, is_public, created_by, recurrence, external_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`

	_, err = tx.Exec(ctx, sql_query,
		event.ID,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		event.Location,
		event.Color,
		event.IsAllDay,
		event.IsPublic,
		event.CreatedBy,
		event.Recurrence,
		event.ExternalID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	if err := replaceParticipants(ctx, tx, event); err != nil {
		return mapError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) UpdateEvent(ctx context.Context, event *models.Event) error {
	op := "internal/storage/postgres_events.go UpdateEvent"

	event.UpdatedAt = time.Now().UTC()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return mapError(op, err)
	}
	defer tx.Rollback(ctx)

	sql_query := `
	UPDATE events SET
	title = $2,
	description = $3,
	start_datetime = $4,
	end_datetime = $5,
	location = $6,
	color = $7,
	is_all_day = $8,
	is_public = $9,
	recurrence = $10,
	external_id = COALESCE(NULLIF($11, ''), external_id),
	updated_at = $12
	WHERE id = $1
	RETURNING created_by, created_at, external_id;
	`

	err = tx.QueryRow(ctx, sql_query,
		event.ID,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		event.Location,
		event.Color,
		event.IsAllDay,
		event.IsPublic,
		event.Recurrence,
		event.ExternalID,
		event.UpdatedAt,
	).Scan(&event.CreatedBy, &event.CreatedAt, &event.ExternalID)
	if err != nil {
		return mapError(op, err)
	}

	if err := replaceParticipants(ctx, tx, event); err != nil {
		return mapError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(op, err)
	}
	return nil
}

// replaceParticipants swaps the stored participant set for the event's one.
func replaceParticipants(ctx context.Context, tx pgx.Tx, event *models.Event) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM event_participants WHERE event_id = $1;`, event.ID)
	for i, id := range event.ParticipantIDs() {
		batch.Queue(`
		INSERT INTO event_participants (event_id, user_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING;
		`, event.ID, id, i)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (p *Postgres) DeleteEvent(ctx context.Context, id string) error {
	op := "internal/storage/postgres_events.go DeleteEvent"

	tag, err := p.pool.Exec(ctx, `DELETE FROM events WHERE id = $1;`, id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, tag)
}

func (p *Postgres) SetExternalID(ctx context.Context, id, externalID string) error {
	op := "internal/storage/postgres_events.go SetExternalID"

	tag, err := p.pool.Exec(ctx, `UPDATE events SET external_id = $2 WHERE id = $1;`, id, externalID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, tag)
}
