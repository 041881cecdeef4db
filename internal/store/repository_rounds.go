package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// StartRound inserts an in-progress round and returns its id.
func (s *Store) StartRound(ctx context.Context, tableID string, number, leaderSeat int) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO rounds (id, table_id, round_no, leader_seat) VALUES ($1, $2, $3, $4)`,
		id, tableID, number, leaderSeat)
	return id, err
}

func (s *Store) RecordPlay(ctx context.Context, p Play) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO plays (id, round_id, trick_no, position, seat, card, violation) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.RoundID, p.Trick, p.Position, p.Seat, p.Card, nullText(p.Violation))
	return err
}

func (s *Store) FinishRound(ctx context.Context, roundID string, out RoundOutcome) error {
	return requireRow(s.Pool.Exec(ctx, `
UPDATE rounds
SET status = $2, reason = $3, detail = $4, trump_card = $5, plays = $6, ended_at = now()
WHERE id = $1`,
		roundID, out.Status, nullText(out.Reason), nullText(out.Detail), nullText(out.TrumpCard), out.Plays))
}

// RecordDrain stores how many identifiers were discarded after the round was
// invalidated.
func (s *Store) RecordDrain(ctx context.Context, roundID string, drained int) error {
	return requireRow(s.Pool.Exec(ctx, `UPDATE rounds SET drained = $2 WHERE id = $1`, roundID, drained))
}

func (s *Store) ListRounds(ctx context.Context, tableID string, limit, offset int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, table_id, round_no, leader_seat, status, reason, detail, trump_card, plays, drained, started_at, ended_at
FROM rounds
WHERE table_id = $1
ORDER BY round_no
LIMIT $2 OFFSET $3`, tableID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Round{}
	for rows.Next() {
		var (
			r                         Round
			reason, detail, trumpCard pgtype.Text
			endedAt                   pgtype.Timestamptz
		)
		if err := rows.Scan(&r.ID, &r.TableID, &r.Number, &r.LeaderSeat, &r.Status, &reason, &detail, &trumpCard,
			&r.Plays, &r.Drained, &r.StartedAt, &endedAt); err != nil {
			return nil, err
		}
		r.Reason = textOrEmpty(reason)
		r.Detail = textOrEmpty(detail)
		r.TrumpCard = textOrEmpty(trumpCard)
		r.EndedAt = optionalTime(endedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListPlays(ctx context.Context, roundID string) ([]Play, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, round_id, trick_no, position, seat, card, violation, created_at
FROM plays
WHERE round_id = $1
ORDER BY trick_no, position`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Play{}
	for rows.Next() {
		var (
			p         Play
			violation pgtype.Text
		)
		if err := rows.Scan(&p.ID, &p.RoundID, &p.Trick, &p.Position, &p.Seat, &p.Card, &violation, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Violation = textOrEmpty(violation)
		out = append(out, p)
	}
	return out, rows.Err()
}
