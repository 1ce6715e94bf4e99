package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Category is a node in the material taxonomy tree, stored as a flat row
// in 'material_category'. A NULL parent_id marks a root node.
type Category struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *uint64   `json:"parentId"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryUpdate describes a partial update. Nil fields are left
// untouched; SetParent distinguishes "move to root" (ParentID nil) from
// "parent not supplied".
type CategoryUpdate struct {
	Name      *string
	Slug      *string
	SetParent bool
	ParentID  *uint64
	SortOrder *int
	IsActive  *bool
}

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryCols = "id, name, slug, parent_id, sort_order, is_active, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.SortOrder,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns categories ordered by (parent_id, sort_order, name), the
// order the admin console expects for tree construction. With activeOnly
// set, soft-deleted nodes are excluded.
func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	q := "SELECT " + categoryCols + " FROM material_category"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY parent_id ASC, sort_order ASC, name ASC"

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0, 64)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (Category, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx,
		"SELECT "+categoryCols+" FROM material_category WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	return c, err
}

// Create inserts a category and returns the stored row. A slug collision
// on the unique index surfaces as ErrSlugExists.
func (r *CategoryRepo) Create(ctx context.Context, name, slug string, parentID *uint64, sortOrder int, isActive bool) (Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO material_category (name, slug, parent_id, sort_order, is_active) VALUES (?,?,?,?,?)",
		name, slug, parentID, sortOrder, isActive)
	if err != nil {
		if isDuplicate(err) {
			return Category{}, ErrSlugExists
		}
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update applies a partial update and returns the resulting row. It
// returns ErrCategoryNotFound when the id has no row and ErrSlugExists
// when a rename collides with an existing slug.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, upd CategoryUpdate) (Category, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return Category{}, err
	}

	set := []string{}
	args := []any{}
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Slug != nil {
		set = append(set, "slug=?")
		args = append(args, *upd.Slug)
	}
	if upd.SetParent {
		set = append(set, "parent_id=?")
		args = append(args, upd.ParentID)
	}
	if upd.SortOrder != nil {
		set = append(set, "sort_order=?")
		args = append(args, *upd.SortOrder)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	q := "UPDATE material_category SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return Category{}, ErrSlugExists
		}
		return Category{}, err
	}
	return r.GetByID(ctx, id)
}

// CountChildren returns the number of direct children of a category.
func (r *CategoryRepo) CountChildren(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM material_category WHERE parent_id=?", id).Scan(&n)
	return n, err
}

// CountMaterials returns the number of materials referencing a category.
func (r *CategoryRepo) CountMaterials(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM material WHERE category_id=?", id).Scan(&n)
	return n, err
}

// SoftDelete flags the category inactive and returns the updated row.
func (r *CategoryRepo) SoftDelete(ctx context.Context, id uint64) (Category, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE material_category SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=?", id); err != nil {
		return Category{}, err
	}
	// RowsAffected is 0 for both a missing row and an already-inactive
	// one, so the follow-up SELECT decides which it was.
	return r.GetByID(ctx, id)
}

// HardDelete removes the row entirely. Callers must only use it for
// leaf categories without referencing materials.
func (r *CategoryRepo) HardDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM material_category WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
