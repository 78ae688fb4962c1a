package storage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"syncalendar/internal/models"
)

func (p *Postgres) CreateUser(ctx context.Context, user *models.User, passwordHash string) error {
	op := "internal/storage/postgres_users.go CreateUser"

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	sql_query := `
	INSERT INTO users
	(id, email, name, avatar, password_hash, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := p.pool.Exec(ctx, sql_query,
		user.ID,
		user.Email,
		user.Name,
		user.Avatar,
		passwordHash,
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (models.User, error) {
	op := "internal/storage/postgres_users.go GetUser"

	sql_query := `
	SELECT id, email, name, avatar FROM users
	WHERE id = $1;
	`

	var user models.User
	err := p.pool.QueryRow(ctx, sql_query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Avatar,
	)
	if err != nil {
		return models.User{}, mapError(op, err)
	}

	return user, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	op := "internal/storage/postgres_users.go GetUserByEmail"

	sql_query := `
	SELECT id, email, name, avatar, password_hash FROM users
	WHERE lower(email) = lower($1);
	`

	var user models.User
	var hash string
	err := p.pool.QueryRow(ctx, sql_query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Avatar,
		&hash,
	)
	if err != nil {
		return models.User{}, "", mapError(op, err)
	}

	return user, hash, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes q match literally inside a LIKE pattern.
func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}

func (p *Postgres) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	op := "internal/storage/postgres_users.go SearchUsers"

	if limit <= 0 {
		limit = 20
	}

	sql_query := `
	SELECT id, email, name, avatar FROM users
	WHERE email ILIKE '%' || $1 || '%' ESCAPE '\'
	ORDER BY email
	LIMIT $2;
	`

	rows, err := p.pool.Query(ctx, sql_query, escapeLike(strings.TrimSpace(query)), limit)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user := models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Avatar); err != nil {
			return nil, mapError(op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}

	return users, nil
}
