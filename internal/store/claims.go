// Package store holds external persistence adapters. The learner's
// state is in-memory; the claim archive is a best-effort mirror whose
// failures never abort ingestion.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaip/claip/internal/domain"
)

type ClaimArchive struct {
	db *pgxpool.Pool
}

func NewClaimArchive(db *pgxpool.Pool) *ClaimArchive {
	return &ClaimArchive{db: db}
}

func (s *ClaimArchive) Insert(ctx context.Context, c *domain.Claim) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO claims (subject, info, label, source_ids, own, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.Subject, c.Info, c.Label, c.SourceIDs, c.Own, c.Timestamp,
	)
	return err
}

var _ domain.ClaimArchiver = (*ClaimArchive)(nil)
