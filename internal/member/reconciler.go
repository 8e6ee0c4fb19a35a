package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

var (
	// ErrWritesDisabled is reported when no spreadsheet writer is configured.
	ErrWritesDisabled = errors.New("spreadsheet writes disabled")
	// ErrRowNotOwned means the addressed spreadsheet row belongs to another email.
	ErrRowNotOwned = errors.New("Unauthorized: Email mismatch")
	// ErrNoRow means the member has no spreadsheet row to write to.
	ErrNoRow = errors.New("no spreadsheet row for this member")
)

// IsPermanent reports whether a mirror failure will repeat on retry.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrWritesDisabled) ||
		errors.Is(err, ErrRowNotOwned) ||
		errors.Is(err, ErrNoRow)
}

// SaveStatus is the outcome of SaveRecord when the database write succeeded.
type SaveStatus string

const (
	StatusSaved   SaveStatus = "ok"
	StatusPartial SaveStatus = "partial_ok"
)

// SaveResult reports whether the spreadsheet mirror kept up with the database.
type SaveResult struct {
	Status SaveStatus
	Detail string
}

// Synced reports whether both stores were written.
func (r SaveResult) Synced() bool {
	return r.Status == StatusSaved
}

// Reconciler merges the database and spreadsheet copies of a member record.
// It holds no state between calls.
type Reconciler struct {
	store  Store
	reader SheetReader
	writer SheetWriter
	repair RepairEnqueuer
	logger *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRepair enqueues a mirror task whenever a save leaves the spreadsheet behind.
func WithRepair(q RepairEnqueuer) Option {
	return func(r *Reconciler) { r.repair = q }
}

// NewReconciler wires the stores. writer may be nil when spreadsheet writes
// are disabled.
func NewReconciler(store Store, reader SheetReader, writer SheetWriter, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		reader: reader,
		writer: writer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetRecord returns the reconciled record for a user and which store won.
func (r *Reconciler) GetRecord(ctx context.Context, userID uuid.UUID, email string) (Record, Source, error) {
	dbRecord, err := r.store.GetMember(ctx, userID)
	if err != nil {
		return Record{}, "", err
	}

	if Authority(dbRecord) == SourceDatabase {
		rec := *dbRecord
		if rec.Email == "" {
			rec.Email = email
		}
		return rec, SourceDatabase, nil
	}

	sheetRecord, err := r.reader.Lookup(ctx, email)
	if err != nil {
		return Record{}, "", fmt.Errorf("reading spreadsheet: %w", err)
	}
	if sheetRecord != nil {
		return *sheetRecord, SourceSpreadsheet, nil
	}

	return Skeleton(email), SourceEmpty, nil
}

// SaveRecord writes the database first; it must succeed or nothing else is
// attempted. The spreadsheet write is best effort and is never rolled back
// into the database: a failure is reported as StatusPartial.
func (r *Reconciler) SaveRecord(ctx context.Context, userID uuid.UUID, email string, fields Fields) (SaveResult, error) {
	if err := r.store.UpdateMember(ctx, userID, email, fields); err != nil {
		return SaveResult{}, err
	}

	if err := r.Mirror(ctx, email, fields); err != nil {
		r.logger.Warn("spreadsheet out of sync",
			"user_id", userID,
			"error", err,
		)
		r.scheduleRepair(ctx, userID, err)
		return SaveResult{Status: StatusPartial, Detail: err.Error()}, nil
	}

	return SaveResult{Status: StatusSaved}, nil
}

// Mirror pushes fields into the spreadsheet row owned by email.
func (r *Reconciler) Mirror(ctx context.Context, email string, fields Fields) error {
	if r.writer == nil {
		return ErrWritesDisabled
	}

	who := Identity{Email: email}
	if r.reader != nil {
		row, err := r.reader.Lookup(ctx, email)
		if err != nil {
			return fmt.Errorf("locating spreadsheet row: %w", err)
		}
		if row != nil {
			who.RowIndex = row.RowIndex
		}
	}

	return r.writer.Write(ctx, who, fields)
}

func (r *Reconciler) scheduleRepair(ctx context.Context, userID uuid.UUID, cause error) {
	if r.repair == nil || IsPermanent(cause) {
		return
	}
	if err := r.repair.EnqueueMirror(ctx, userID); err != nil {
		r.logger.Error("failed to enqueue spreadsheet repair", "user_id", userID, "error", err)
	}
}

// Resync mirrors the stored database record of a user into the spreadsheet.
// Users without a database row have nothing to mirror.
func (r *Reconciler) Resync(ctx context.Context, userID uuid.UUID) error {
	rec, err := r.store.GetMember(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	return r.Mirror(ctx, rec.Email, rec.Fields)
}
