package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Queries wraps a connection pool with the hand-written SQL statements
// used throughout the service (spec.md's persistence layer, expanded in
// SPEC_FULL.md §3).
type Queries struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}
