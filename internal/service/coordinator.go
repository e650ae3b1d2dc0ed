package service

import (
	"Larder/internal/pkg/dbctx"
	"context"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Clock is injected so tests can pin submittedAt / modifiedAt.
type Clock func() time.Time

// TxRunner is the transaction boundary every write goes through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return NewError(KindStorage, "service.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		// a request cancelled while the work ran must not commit
		return ctx.Err()
	})
}

// CounterCache holds read-through copies of derived counters. It is never
// consulted inside a write transaction.
type CounterCache interface {
	GetCount(ctx context.Context, key string) (int64, bool)
	SetCount(ctx context.Context, key string, value int64)
	Evict(ctx context.Context, keys ...string)
}

type noopCache struct{}

func (noopCache) GetCount(context.Context, string) (int64, bool) { return 0, false }
func (noopCache) SetCount(context.Context, string, int64) {}
func (noopCache) Evict(context.Context, ...string) {}

type BaseDeps struct {
	DB     *gorm.DB
	Runner TxRunner
	Clock  Clock
	Cache  CounterCache
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Cache == nil {
		d.Cache = noopCache{}
	}
	return d
}

func (d BaseDeps) now() time.Time {
	return d.Clock().UTC().Truncate(time.Second)
}

// executeWrite runs fn in one transaction. Any error rolls back and is returned
// as a typed *Error; storage failures are logged here and never retried.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "service.write"
	}

	mapped := MapError(op, deps.Runner.InTx(ctx, fn))
	if mapped == nil {
		log.InfoContext(ctx, "write committed", "op", op, "latency", time.Since(start))
		return nil
	}

	kind := KindOf(mapped)
	if kind == KindStorage {
		log.ErrorContext(ctx, "write failed", "op", op, "kind", kind, "err", mapped)
	} else {
		log.WarnContext(ctx, "write rejected", "op", op, "kind", kind, "err", mapped)
	}
	return mapped
}

// validationFailed reports a request rejected before any storage access.
func validationFailed(ctx context.Context, op string, err error) error {
	mapped := MapError(op, err)
	if KindOf(mapped) != KindValidation {
		mapped = NewError(KindValidation, op, err.Error(), err)
	}
	log.WarnContext(ctx, "write rejected", "op", op, "kind", KindValidation, "err", mapped)
	return mapped
}

func readCtx(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}
