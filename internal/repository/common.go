package repository

import (
	"context"

	"Larder/internal/pkg/dbctx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conn picks the transaction carried by dbc, or the repository's own handle.
func conn(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = db
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return tx.WithContext(ctx)
}

var (
	forUpdate = clause.Locking{Strength: "UPDATE"}
	forShare  = clause.Locking{Strength: "SHARE"}
)
