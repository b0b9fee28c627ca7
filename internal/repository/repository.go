// Package repository persists tokens and committed reports. Pending tokens and
// history are two stages of one records table plus a denormalized history index.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/xrfdesk/internal/models"
)

var (
	// ErrNotFound means no record with that id exists in the requested collection
	ErrNotFound = errors.New("record not found")
	// ErrPayloadTooLarge means the record's image exceeds the store limit
	ErrPayloadTooLarge = errors.New("record image exceeds store size limit")
	// ErrIncomplete means a token without analysis was offered to history
	ErrIncomplete = errors.New("only records with percentage and element can enter history")
)

// Repository is the persistence boundary used by the service layer
type Repository interface {
	ListPending(ctx context.Context) ([]models.Record, error)
	ListPendingForDay(ctx context.Context, day time.Time) ([]models.Record, error)
	ListHistory(ctx context.Context) ([]models.Record, error)
	SearchHistory(ctx context.Context, query string) ([]models.Record, error)
	GetPending(ctx context.Context, id string) (models.Record, error)
	GetHistory(ctx context.Context, id string) (models.Record, error)
	CountForDay(ctx context.Context, day time.Time) (int, error)

	AppendPending(ctx context.Context, rec models.Record) error
	// AppendPendingWithSequence counts the day's records, assigns the next
	// token number and inserts rec as one atomic step.
	AppendPendingWithSequence(ctx context.Context, rec models.Record, now time.Time) (models.Record, error)
	ReplacePending(ctx context.Context, rec models.Record) error
	RemovePending(ctx context.Context, id string) error

	AppendHistory(ctx context.Context, rec models.Record) error
	ReplaceHistory(ctx context.Context, rec models.Record) error
	RemoveHistory(ctx context.Context, id string) error
	// CommitToHistory moves a pending record into history, storing rec's
	// current field values, in one transaction.
	CommitToHistory(ctx context.Context, rec models.Record) (models.Record, error)
}
