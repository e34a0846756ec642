package postgres

import (
	"context"
	"database/sql"

	"travelmatch/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// TxManager runs units of work inside database transactions, handing the
// callback transaction-scoped repositories.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx begins a transaction, invokes fn with repositories bound to it,
// and commits on success. Any error from fn rolls the transaction back and
// is returned unchanged.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r repository.TxRepos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.TxRepos{
		Hosts:   NewHostRepositoryWithTx(tx),
		Trips:   NewTripRepositoryWithTx(tx),
		Matches: NewMatchRepositoryWithTx(tx),
	}

	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure TxManager implements repository.TxRunner.
var _ repository.TxRunner = (*TxManager)(nil)
