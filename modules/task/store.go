package task

import "context"

// Store is the persistence interface the service consumes: single-document
// CRUD plus the membership query. Updates replace the whole document; there
// is no optimistic-concurrency check, so concurrent updates are last-writer-wins.
type Store interface {
	Create(ctx context.Context, t *Task) error
	ByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error

	// ForUser returns every task where the user is creator or assignee,
	// in store order.
	ForUser(ctx context.Context, userID string) ([]Task, error)
}
