package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: name already exists")
)

// Repository persists categories and the items they contain. Identifiers are
// opaque strings assigned by the repository and never reused.
//
// Deleting a category removes its items. ReinsertCategory restores only the
// category row.
type Repository interface {
	CreateCategory(ctx context.Context, name string) (string, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	RenameCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error
	ReinsertCategory(ctx context.Context, id, name string) error
	ListCategories(ctx context.Context) ([]Category, error)

	CreateItem(ctx context.Context, categoryID, name string) (string, error)
	GetItem(ctx context.Context, id string) (Item, error)
	RenameItem(ctx context.Context, id, name string) error
	DeleteItem(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	ReinsertItem(ctx context.Context, id, categoryID, name string, completed bool) error
	ListItems(ctx context.Context, categoryID string) ([]Item, error)
}
