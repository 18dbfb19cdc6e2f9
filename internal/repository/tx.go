package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// withTx binds tx to ctx so repository calls made with the returned context
// join the transaction.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction bound to ctx, or db. The flag reports whether
// a transaction was found.
func conn(ctx context.Context, db *gorm.DB) (*gorm.DB, bool) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx), true
	}
	return db.WithContext(ctx), false
}
