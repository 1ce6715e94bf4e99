package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/repository"
)

// MaterialStore is the persistence surface for catalog management.
// *repository.MaterialRepo satisfies it.
type MaterialStore interface {
	Search(ctx context.Context, q repository.MaterialQuery) ([]repository.Material, int64, error)
	GetByID(ctx context.Context, id uint64) (repository.Material, error)
	Create(ctx context.Context, m repository.Material) (repository.Material, error)
	Update(ctx context.Context, id uint64, upd repository.MaterialUpdate) (repository.Material, error)
	SoftDelete(ctx context.Context, id uint64) (repository.Material, error)
}

// MaterialHandler implements the admin material catalog endpoints.
type MaterialHandler struct {
	Materials  MaterialStore
	Categories CategoryStore
	Events     EventPublisher
}

func NewMaterialHandler(materials MaterialStore, categories CategoryStore, events EventPublisher) *MaterialHandler {
	return &MaterialHandler{Materials: materials, Categories: categories, Events: events}
}

type materialCreateReq struct {
	Name        string   `json:"name"`
	CategoryID  *uint64  `json:"categoryId"`
	Unit        string   `json:"unit"`
	UnitCost    *float64 `json:"unitCost"`
	TextureURL  *string  `json:"textureUrl"`
	ModelURL    *string  `json:"modelUrl"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"isActive"`
}

type materialUpdateReq struct {
	Name        *string  `json:"name"`
	CategoryID  *uint64  `json:"categoryId"`
	Unit        *string  `json:"unit"`
	UnitCost    *float64 `json:"unitCost"`
	TextureURL  *string  `json:"textureUrl"`
	ModelURL    *string  `json:"modelUrl"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"isActive"`
}

func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func totalPagesOf(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}

// List returns one page of materials. A categoryId filter is widened to
// the category's whole descendant set so a parent category surfaces the
// materials of every subcategory beneath it. The active category rows
// ride along for the console's filter dropdown.
func (h *MaterialHandler) List(c echo.Context) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx, true)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	q := repository.MaterialQuery{Page: page, Limit: limit}

	if raw := c.QueryParam("categoryId"); raw != "" {
		catID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return respondErr(c, http.StatusBadRequest, codeValidation, "categoryId must be a number")
		}
		for id := range repository.DescendantIDs(cats, catID) {
			q.CategoryIDs = append(q.CategoryIDs, id)
		}
	}
	if raw := c.QueryParam("isActive"); raw != "" {
		active := raw == "true"
		q.IsActive = &active
	}
	// Query strings arrive with '+' for spaces; normalize before matching.
	q.Search = strings.TrimSpace(strings.ReplaceAll(c.QueryParam("search"), "+", " "))

	items, total, err := h.Materials.Search(ctx, q)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       items,
		"categories": cats,
		"pagination": echo.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPagesOf(total, limit),
		},
	})
}

// Get returns a single material by id.
func (h *MaterialHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid material id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return respondErr(c, http.StatusNotFound, codeMaterialMissing, "Material not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	return respond(c, http.StatusOK, m)
}

// Create adds a material. Name, categoryId, unit and unitCost are
// mandatory; new materials default to active.
func (h *MaterialHandler) Create(c echo.Context) error {
	var req materialCreateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == nil || strings.TrimSpace(req.Unit) == "" || req.UnitCost == nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "Name, categoryId, unit, and unitCost are required")
	}
	if *req.UnitCost < 0 {
		return respondErr(c, http.StatusBadRequest, codeValidation, "unitCost must not be negative")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Materials.Create(ctx, repository.Material{
		Name:        req.Name,
		CategoryID:  *req.CategoryID,
		Unit:        strings.TrimSpace(req.Unit),
		UnitCost:    *req.UnitCost,
		TextureURL:  req.TextureURL,
		ModelURL:    req.ModelURL,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "create material failed")
	}

	publishCatalog(h.Events, "material", "created", m.ID, m.Name, false)
	return respond(c, http.StatusCreated, m)
}

// Update applies a partial update; only supplied fields change.
func (h *MaterialHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid material id")
	}
	var req materialUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		return respondErr(c, http.StatusBadRequest, codeValidation, "unitCost must not be negative")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Materials.Update(ctx, id, repository.MaterialUpdate{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Unit:        req.Unit,
		UnitCost:    req.UnitCost,
		TextureURL:  req.TextureURL,
		ModelURL:    req.ModelURL,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return respondErr(c, http.StatusNotFound, codeMaterialMissing, "Material not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "update material failed")
	}

	publishCatalog(h.Events, "material", "updated", m.ID, m.Name, false)
	return respond(c, http.StatusOK, m)
}

// Delete soft-deletes a material; the row stays retrievable with
// isActive=false so existing orders and projects keep their reference.
func (h *MaterialHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid material id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Materials.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return respondErr(c, http.StatusNotFound, codeMaterialMissing, "Material not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "delete material failed")
	}

	publishCatalog(h.Events, "material", "deleted", m.ID, m.Name, true)
	return respond(c, http.StatusOK, m)
}
