package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"syncalendar/internal/models"
)

const notificationColumns = `id, user_id, event_id, title, body, scheduled_time, is_read, created_at`

func (p *Postgres) CreateNotification(ctx context.Context, n *models.Notification) error {
	op := "internal/storage/postgres_notifications.go CreateNotification"

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	sql_query := `
	INSERT INTO notifications
	(` + notificationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := p.pool.Exec(ctx, sql_query,
		n.ID,
		n.UserID,
		n.EventID,
		n.Title,
		n.Body,
		n.ScheduledTime,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	op := "internal/storage/postgres_notifications.go ListNotifications"

	sql_query := `
	SELECT ` + notificationColumns + ` FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC, scheduled_time DESC;
	`

	return p.queryNotifications(ctx, op, sql_query, userID)
}

func (p *Postgres) DueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	op := "internal/storage/postgres_notifications.go DueNotifications"

	sql_query := `
	SELECT ` + notificationColumns + ` FROM notifications
	WHERE NOT is_read AND scheduled_time <= $1
	ORDER BY scheduled_time;
	`

	return p.queryNotifications(ctx, op, sql_query, now)
}

func (p *Postgres) queryNotifications(ctx context.Context, op, sql_query string, args ...any) ([]models.Notification, error) {
	rows, err := p.pool.Query(ctx, sql_query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		n := models.Notification{}
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.EventID,
			&n.Title,
			&n.Body,
			&n.ScheduledTime,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, mapError(op, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (p *Postgres) MarkRead(ctx context.Context, userID, id string) error {
	op := "internal/storage/postgres_notifications.go MarkRead"

	tag, err := p.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, tag)
}

func (p *Postgres) MarkAllRead(ctx context.Context, userID string) error {
	op := "internal/storage/postgres_notifications.go MarkAllRead"

	if _, err := p.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1;`, userID); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) DeleteNotification(ctx context.Context, userID, id string) error {
	op := "internal/storage/postgres_notifications.go DeleteNotification"

	tag, err := p.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, tag)
}

func (p *Postgres) DeleteEventNotifications(ctx context.Context, eventID string) error {
	op := "internal/storage/postgres_notifications.go DeleteEventNotifications"

	if _, err := p.pool.Exec(ctx, `DELETE FROM notifications WHERE event_id = $1 AND NOT is_read;`, eventID); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) ClearNotifications(ctx context.Context, userID string) error {
	op := "internal/storage/postgres_notifications.go ClearNotifications"

	if _, err := p.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1;`, userID); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) NotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	op := "internal/storage/postgres_notifications.go NotificationSettings"

	sql_query := `
	SELECT enabled, reminder_minutes, sound, vibration FROM notification_settings
	WHERE user_id = $1;
	`

	var s models.NotificationSettings
	err := p.pool.QueryRow(ctx, sql_query, userID).Scan(
		&s.Enabled,
		&s.ReminderMinutes,
		&s.Sound,
		&s.Vibration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, mapError(op, err)
	}
	return s, nil
}

func (p *Postgres) SaveNotificationSettings(ctx context.Context, userID string, s models.NotificationSettings) error {
	op := "internal/storage/postgres_notifications.go SaveNotificationSettings"

	sql_query := `
	INSERT INTO notification_settings (user_id, enabled, reminder_minutes, sound, vibration)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id) DO UPDATE SET
	enabled = EXCLUDED.enabled,
	reminder_minutes = EXCLUDED.reminder_minutes,
	sound = EXCLUDED.sound,
	vibration = EXCLUDED.vibration
	`

	_, err := p.pool.Exec(ctx, sql_query, userID, s.Enabled, s.ReminderMinutes, s.Sound, s.Vibration)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}
