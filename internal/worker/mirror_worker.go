// Package worker mirrors the local ledger to the spreadsheet when change
// messages arrive.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"dauvest/internal/amqp"
	"dauvest/internal/ledger"
	"dauvest/internal/sheets"
	"dauvest/internal/storage"
)

// MirrorWorker rewrites the mirror with the current ledger snapshot. It reads
// the records fresh on every message so it can run beside the API process.
type MirrorWorker struct {
	kv     storage.KV
	mirror sheets.LedgerMirror
}

func NewMirrorWorker(kv storage.KV, mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{kv: kv, mirror: mirror}
}

// HandleLedgerChange mirrors the namespace named by msg.
func (w *MirrorWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"namespace", msg.Namespace,
		"operation", msg.Operation,
		"id", msg.ID)

	switch msg.Namespace {
	case amqp.NamespaceTransactions:
		return w.mirrorTransactions(ctx)
	case amqp.NamespaceGoals:
		return w.mirrorGoals(ctx)
	default:
		return fmt.Errorf("unknown namespace %q", msg.Namespace)
	}
}

// StartupSync mirrors both ledgers so the sheet reflects writes made while
// the worker was down.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.mirrorTransactions(gctx) })
	g.Go(func() error { return w.mirrorGoals(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	slog.InfoContext(ctx, "Startup mirror completed")
	return nil
}

func (w *MirrorWorker) mirrorTransactions(ctx context.Context) error {
	txs, err := ledger.OpenTransactions(ctx, w.kv)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	list := txs.List()
	if err := w.mirror.WriteTransactions(ctx, list); err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	slog.DebugContext(ctx, "Mirrored transactions", "count", len(list))
	return nil
}

func (w *MirrorWorker) mirrorGoals(ctx context.Context) error {
	goals, err := ledger.OpenGoals(ctx, w.kv)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	list := goals.List()
	if err := w.mirror.WriteGoals(ctx, list); err != nil {
		return fmt.Errorf("mirror goals: %w", err)
	}
	slog.DebugContext(ctx, "Mirrored goals", "count", len(list))
	return nil
}
