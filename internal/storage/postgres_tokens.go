package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

func (p *Postgres) SaveGoogleToken(ctx context.Context, userID string, token *oauth2.Token) error {
	op := "internal/storage/postgres_tokens.go SaveGoogleToken"

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal token: %w", op, err)
	}

	sql_query := `
	INSERT INTO google_tokens (user_id, token) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE SET
	token = EXCLUDED.token
	`

	if _, err := p.pool.Exec(ctx, sql_query, userID, tokenJSON); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (p *Postgres) GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	op := "internal/storage/postgres_tokens.go GoogleToken"

	var tokenJSON []byte
	err := p.pool.QueryRow(ctx, `SELECT token FROM google_tokens WHERE user_id = $1;`, userID).Scan(&tokenJSON)
	if err != nil {
		return nil, mapError(op, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokenJSON, tok); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal token: %w", op, err)
	}
	return tok, nil
}
