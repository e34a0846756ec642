package repository

import "context"

// TxRepos bundles the transaction-scoped repositories available to a unit
// of work.
type TxRepos struct {
	Hosts   HostRepository
	Trips   TripRepository
	Matches MatchRepository
}

// TxRunner executes a function inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise; the
// error from fn is returned unchanged so callers can classify it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}
