// Package providers implements the admin-side provider approval workflow:
// idempotent approval, and rejection that removes the provider together with
// its owning user account in one atomic unit.
package providers

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("provider not found")

// Store is the persistence boundary of the approval workflow.
type Store interface {
	InTransaction(ctx context.Context, fn func(Store) error) error

	ProviderExists(ctx context.Context, id string) (userID string, approved bool, err error)
	SetApproved(ctx context.Context, id string) error
	DeleteProvider(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID string) error
}

type Workflow struct {
	store Store
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store}
}

// Approve marks a provider approved. Approving an already-approved provider
// is a no-op success.
func (w *Workflow) Approve(ctx context.Context, providerID string) error {
	_, approved, err := w.store.ProviderExists(ctx, providerID)
	if err != nil {
		return err
	}
	if approved {
		return nil
	}
	return w.store.SetApproved(ctx, providerID)
}

// Reject deletes the provider and cascades to its owning user. Both deletes
// share one transaction, provider row first so the user row is never removed
// while a provider still references it.
func (w *Workflow) Reject(ctx context.Context, providerID string) error {
	return w.store.InTransaction(ctx, func(s Store) error {
		userID, _, err := s.ProviderExists(ctx, providerID)
		if err != nil {
			return err
		}
		if err := s.DeleteProvider(ctx, providerID); err != nil {
			return err
		}
		return s.DeleteUser(ctx, userID)
	})
}
