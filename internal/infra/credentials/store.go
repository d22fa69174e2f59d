package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"logomotion/internal/infra"
	"logomotion/internal/sqlinline"
)

const (
	ProviderVeo = "veo"
)

// Store keeps provider API keys in the database so a deployment can rotate
// the generation credential without restarting the worker.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) VeoAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderVeo)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetVeoAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("veo api key is required")
	}
	return s.upsert(ctx, ProviderVeo, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
