package database

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxFunc defines a function executed within a transaction. The transaction
// handle travels in the context; repositories pick it up via Handle. It is an
// alias so business-layer interfaces can name the shape without importing
// this package.
type TxFunc = func(ctx context.Context) error

// txKey is the context key for the active transaction
type txKey struct{}

// ContextWithTx returns a context carrying the given transaction
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext extracts the active transaction from the context, if any
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// Handle returns the gorm handle repositories should use for ctx: the
// context's transaction when one is active, the plain connection otherwise.
func (db *DB) Handle(ctx context.Context) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db.DB.WithContext(ctx)
}

// Transaction executes fn inside a database transaction, committing on nil
// and rolling back on error. If the context already carries a transaction the
// function joins that unit of work instead of opening a nested one, so an
// import triggered from a reconciliation item commits or rolls back together
// with the item's ledger entry.
func (db *DB) Transaction(ctx context.Context, fn TxFunc) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(ContextWithTx(ctx, tx)); err != nil {
			db.logger.Debug("transaction rolled back", zap.Error(err))
			return err
		}
		return nil
	})
}
