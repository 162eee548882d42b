package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

const sqliteTimeLayout = time.RFC3339Nano

const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	// foreign_keys is per connection; pin the pool to one so the cascade
	// always applies.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Open opens the database at path with the named driver, creating the parent
// directory when needed, and applies the embedded migrations.
func Open(driver, path string) (*SQLiteRepository, error) {
	switch driver {
	case "":
		driver = DriverCGO
	case DriverCGO, DriverPure:
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	if err := r.insertCategory(ctx, id, name); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRepository) ReinsertCategory(ctx context.Context, id, name string) error {
	if id == "" {
		return errors.New("storage: reinsert category requires an id")
	}
	return r.insertCategory(ctx, id, name)
}

func (r *SQLiteRepository) insertCategory(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES (?, ?, ?)`,
		id, name, mustTime(r.now()),
	)
	return classify(err)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	out, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) RenameCategory(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return classify(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateItem(ctx context.Context, categoryID, name string) (string, error) {
	id := uuid.NewString()
	if err := r.insertItem(ctx, id, categoryID, name, false); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRepository) ReinsertItem(ctx context.Context, id, categoryID, name string, completed bool) error {
	if id == "" {
		return errors.New("storage: reinsert item requires an id")
	}
	return r.insertItem(ctx, id, categoryID, name, completed)
}

func (r *SQLiteRepository) insertItem(ctx context.Context, id, categoryID, name string, completed bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, category_id, name, completed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, categoryID, name, boolInt(completed), mustTime(r.now()),
	)
	return classify(err)
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id string) (Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, completed, created_at
		FROM items WHERE id = ?`, id)
	out, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) RenameItem(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return classify(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET completed = ? WHERE id = ?`, boolInt(completed), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListItems(ctx context.Context, categoryID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, name, completed, created_at
		FROM items WHERE category_id = ?
		ORDER BY created_at ASC, rowid ASC`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		it, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (Category, error) {
	var out Category
	var created string
	if err := s.Scan(&out.ID, &out.Name, &created); err != nil {
		return Category{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Category{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanItem(s scanner) (Item, error) {
	var out Item
	var completed int
	var created string
	if err := s.Scan(&out.ID, &out.CategoryID, &out.Name, &completed, &created); err != nil {
		return Item{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Item{}, err
	}
	out.Completed = completed == 1
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// classify maps unique and primary key violations from either driver onto
// ErrConflict, keeping the driver error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			cgoErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pureErr *sqlite.Error
	if errors.As(err, &pureErr) {
		return pureErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE ||
			pureErr.Code() == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
