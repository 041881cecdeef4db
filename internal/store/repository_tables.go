package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (s *Store) CreateTable(ctx context.Context, t RefereeTable) error {
	if t.DrainPolicy == "" {
		t.DrainPolicy = "remaining"
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO referee_tables (id, drain_policy, reveal_trump) VALUES ($1, $2, $3)`,
		t.ID, t.DrainPolicy, t.RevealTrump)
	return err
}

// CloseTable stamps closed_at once; closing a closed table is a no-op.
func (s *Store) CloseTable(ctx context.Context, tableID string) error {
	return requireRow(s.Pool.Exec(ctx,
		`UPDATE referee_tables SET closed_at = COALESCE(closed_at, now()) WHERE id = $1`, tableID))
}

func (s *Store) GetTable(ctx context.Context, tableID string) (RefereeTable, error) {
	var (
		t        RefereeTable
		closedAt pgtype.Timestamptz
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT id, drain_policy, reveal_trump, created_at, closed_at FROM referee_tables WHERE id = $1`, tableID).
		Scan(&t.ID, &t.DrainPolicy, &t.RevealTrump, &t.CreatedAt, &closedAt)
	if err != nil {
		return RefereeTable{}, mapNotFound(err)
	}
	t.ClosedAt = optionalTime(closedAt)
	return t, nil
}
