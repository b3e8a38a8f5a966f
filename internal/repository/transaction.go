package repository

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

const transactionDBKey contextKey = "storefront_transaction_db"

// withTransaction attaches the active transaction to the context so nested
// repository calls join it instead of opening their own.
func withTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, transactionDBKey, tx)
}

// TransactionFromContext retrieves the active transaction, if any.
func TransactionFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(transactionDBKey).(*gorm.DB)
	if !ok || tx == nil {
		return nil, false
	}
	return tx, true
}

// conn returns the transaction bound to ctx or, outside a transaction, the pool.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// runInTransaction executes fn in a transaction, joining the one bound to ctx
// when present. Any error returned by fn rolls the whole transaction back.
func runInTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if tx, ok := TransactionFromContext(ctx); ok {
		return fn(ctx, tx.WithContext(ctx))
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTransaction(ctx, tx), tx)
	})
	return translateError(err)
}
