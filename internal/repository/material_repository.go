package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Material is a purchasable catalog entry belonging to exactly one
// category. UnitCost is stored as DECIMAL(12,2) and surfaced as a plain
// number in JSON.
type Material struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	CategoryID  uint64    `json:"categoryId"`
	Unit        string    `json:"unit"`
	UnitCost    float64   `json:"unitCost"`
	TextureURL  *string   `json:"textureUrl"`
	ModelURL    *string   `json:"modelUrl"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MaterialQuery defines filters and pagination for the admin listing.
// CategoryIDs is the already-resolved descendant set; nil means no
// category filter. Search matches a case-insensitive substring against
// name or description.
type MaterialQuery struct {
	Page        int
	Limit       int
	CategoryIDs []uint64
	IsActive    *bool
	Search      string
}

// MaterialUpdate describes a partial update; nil fields are untouched.
type MaterialUpdate struct {
	Name        *string
	CategoryID  *uint64
	Unit        *string
	UnitCost    *float64
	TextureURL  *string
	ModelURL    *string
	Description *string
	IsActive    *bool
}

type MaterialRepo struct{ DB *sql.DB }

func NewMaterialRepo(db *sql.DB) *MaterialRepo { return &MaterialRepo{DB: db} }

const materialCols = "id, name, category_id, unit, unit_cost, texture_url, model_url, description, is_active, created_at, updated_at"

func scanMaterial(row interface{ Scan(...any) error }) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Unit, &m.UnitCost,
		&m.TextureURL, &m.ModelURL, &m.Description, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Search returns one page of materials matching the query, newest first,
// along with the total match count for pagination.
func (r *MaterialRepo) Search(ctx context.Context, q MaterialQuery) ([]Material, int64, error) {
	where := []string{}
	args := []any{}

	if len(q.CategoryIDs) > 0 {
		ph := strings.Repeat("?,", len(q.CategoryIDs))
		where = append(where, "category_id IN ("+ph[:len(ph)-1]+")")
		for _, id := range q.CategoryIDs {
			args = append(args, id)
		}
	}
	if q.IsActive != nil {
		where = append(where, "is_active=?")
		args = append(args, *q.IsActive)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		pat := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, pat, pat)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM material WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	dataSQL := "SELECT " + materialCols + " FROM material WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), q.Limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Material, 0, q.Limit)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID fetches a material by id.
func (r *MaterialRepo) GetByID(ctx context.Context, id uint64) (Material, error) {
	m, err := scanMaterial(r.DB.QueryRowContext(ctx,
		"SELECT "+materialCols+" FROM material WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrMaterialNotFound
	}
	return m, err
}

// Create inserts a material and returns the stored row.
func (r *MaterialRepo) Create(ctx context.Context, m Material) (Material, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO material (name, category_id, unit, unit_cost, texture_url, model_url, description, is_active) VALUES (?,?,?,?,?,?,?,?)",
		m.Name, m.CategoryID, m.Unit, m.UnitCost, m.TextureURL, m.ModelURL, m.Description, m.IsActive)
	if err != nil {
		return Material{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Material{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update applies a partial update and returns the resulting row, or
// ErrMaterialNotFound when the id has no row.
func (r *MaterialRepo) Update(ctx context.Context, id uint64, upd MaterialUpdate) (Material, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return Material{}, err
	}

	set := []string{}
	args := []any{}
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.CategoryID != nil {
		set = append(set, "category_id=?")
		args = append(args, *upd.CategoryID)
	}
	if upd.Unit != nil {
		set = append(set, "unit=?")
		args = append(args, *upd.Unit)
	}
	if upd.UnitCost != nil {
		set = append(set, "unit_cost=?")
		args = append(args, *upd.UnitCost)
	}
	if upd.TextureURL != nil {
		set = append(set, "texture_url=?")
		args = append(args, *upd.TextureURL)
	}
	if upd.ModelURL != nil {
		set = append(set, "model_url=?")
		args = append(args, *upd.ModelURL)
	}
	if upd.Description != nil {
		set = append(set, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	q := "UPDATE material SET " + strings.Join(set, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return Material{}, err
	}
	return r.GetByID(ctx, id)
}

// SoftDelete flags the material inactive and returns the updated row.
// Materials are never hard-deleted through the admin endpoint.
func (r *MaterialRepo) SoftDelete(ctx context.Context, id uint64) (Material, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return Material{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE material SET is_active=0, updated_at=CURRENT_TIMESTAMP WHERE id=?", id); err != nil {
		return Material{}, err
	}
	return r.GetByID(ctx, id)
}
