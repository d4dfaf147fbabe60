package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through use cases. Concrete
// repositories detect the real type (pgx.Tx for Postgres) and MUST accept
// nil for the non-transactional path.
type Tx interface{}

// NoTX marks the non-transactional path explicitly at call sites.
var NoTX Tx

// TransactionManager executes fn inside a database transaction, handing the
// tx handle to repositories through the Tx argument. Keeping the handle
// opaque stops storage types from leaking into use-case signatures.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
