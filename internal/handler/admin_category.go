package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/repository"
	"github.com/renovia/renovation-api/internal/utils"
)

// CategoryStore is the persistence surface for category management.
// *repository.CategoryRepo satisfies it.
type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]repository.Category, error)
	Create(ctx context.Context, name, slug string, parentID *uint64, sortOrder int, isActive bool) (repository.Category, error)
	Update(ctx context.Context, id uint64, upd repository.CategoryUpdate) (repository.Category, error)
	CountChildren(ctx context.Context, id uint64) (int64, error)
	CountMaterials(ctx context.Context, id uint64) (int64, error)
	SoftDelete(ctx context.Context, id uint64) (repository.Category, error)
	HardDelete(ctx context.Context, id uint64) error
}

// CategoryHandler implements the admin category tree endpoints.
type CategoryHandler struct {
	Categories CategoryStore
	Events     EventPublisher
}

func NewCategoryHandler(categories CategoryStore, events EventPublisher) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Events: events}
}

type categoryCreateReq struct {
	Name      string  `json:"name"`
	ParentID  *uint64 `json:"parentId"`
	SortOrder *int    `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

// categoryUpdateReq keeps parentId as raw JSON so "set to null" (move to
// root) stays distinguishable from "not supplied".
type categoryUpdateReq struct {
	Name      *string         `json:"name"`
	ParentID  json.RawMessage `json:"parentId"`
	SortOrder *int            `json:"sortOrder"`
	IsActive  *bool           `json:"isActive"`
}

func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// List returns the flat ordered category rows together with the
// reconstructed tree.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx, false)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	return respond(c, http.StatusOK, echo.Map{
		"list": cats,
		"tree": repository.BuildTree(cats),
	})
}

// Create adds a category. The slug is derived deterministically from the
// name; a collision with an existing slug is reported as a conflict.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryCreateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondErr(c, http.StatusBadRequest, codeValidation, "name is required")
	}
	slug := utils.Slugify(req.Name)
	if slug == "" {
		return respondErr(c, http.StatusBadRequest, codeValidation, "name must contain at least one alphanumeric character")
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Categories.Create(ctx, req.Name, slug, req.ParentID, sortOrder, isActive)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return respondErr(c, http.StatusConflict, codeConflict, "category slug already exists")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "create category failed")
	}

	publishCatalog(h.Events, "category", "created", created.ID, created.Name, false)
	return respond(c, http.StatusCreated, created)
}

// Update applies a partial update. Renaming regenerates the slug.
// Re-parenting is rejected when the new parent is the category itself or
// one of its descendants, which would cut a cycle into the tree.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid category id")
	}
	var req categoryUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}

	upd := repository.CategoryUpdate{SortOrder: req.SortOrder, IsActive: req.IsActive}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return respondErr(c, http.StatusBadRequest, codeValidation, "name must not be empty")
		}
		slug := utils.Slugify(name)
		if slug == "" {
			return respondErr(c, http.StatusBadRequest, codeValidation, "name must contain at least one alphanumeric character")
		}
		upd.Name = &name
		upd.Slug = &slug
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if len(req.ParentID) > 0 {
		upd.SetParent = true
		if string(req.ParentID) != "null" {
			parentID, err := strconv.ParseUint(strings.TrimSpace(string(req.ParentID)), 10, 64)
			if err != nil {
				return respondErr(c, http.StatusBadRequest, codeValidation, "parentId must be a number or null")
			}
			cats, err := h.Categories.List(ctx, false)
			if err != nil {
				return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
			}
			if _, ok := repository.DescendantIDs(cats, id)[parentID]; ok {
				return respondErr(c, http.StatusBadRequest, codeValidation, "parentId must not be the category or one of its descendants")
			}
			found := false
			for i := range cats {
				if cats[i].ID == parentID {
					found = true
					break
				}
			}
			if !found {
				return respondErr(c, http.StatusBadRequest, codeValidation, "parent category not found")
			}
			upd.ParentID = &parentID
		}
	}

	updated, err := h.Categories.Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return respondErr(c, http.StatusNotFound, codeNotFound, "Category not found")
		case errors.Is(err, repository.ErrSlugExists):
			return respondErr(c, http.StatusConflict, codeConflict, "category slug already exists")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "update category failed")
	}

	publishCatalog(h.Events, "category", "updated", updated.ID, updated.Name, false)
	return respond(c, http.StatusOK, updated)
}

// Delete removes a category. Nodes that still have children or
// referencing materials are soft-deleted (flagged inactive) to keep
// dependents intact; true leaves are removed outright.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid category id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	children, err := h.Categories.CountChildren(ctx, id)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	materials, err := h.Categories.CountMaterials(ctx, id)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	if children > 0 || materials > 0 {
		updated, err := h.Categories.SoftDelete(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return respondErr(c, http.StatusNotFound, codeNotFound, "Category not found")
			}
			return respondErr(c, http.StatusInternalServerError, codeInternal, "delete category failed")
		}
		publishCatalog(h.Events, "category", "deleted", updated.ID, updated.Name, true)
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    updated,
			"meta":    echo.Map{"softDeleted": true},
		})
	}

	if err := h.Categories.HardDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return respondErr(c, http.StatusNotFound, codeNotFound, "Category not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "delete category failed")
	}
	publishCatalog(h.Events, "category", "deleted", id, "", false)
	return respond(c, http.StatusOK, echo.Map{"id": id})
}
