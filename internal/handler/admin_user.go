package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/repository"
)

// CustomerStore is the user listing surface for the admin views.
// *repository.UserRepo satisfies it.
type CustomerStore interface {
	ListCustomers(ctx context.Context, limit, offset int) ([]repository.User, int64, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// ActivityStore aggregates the order/project/chat/consultation activity
// shown next to each customer. *repository.ActivityRepo satisfies it.
type ActivityStore interface {
	OrderCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error)
	ProjectCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error)
	OpenChatCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error)
	RecentPaidOrders(ctx context.Context, userIDs []uint64, perUser int) (map[uint64][]repository.OrderSummary, error)
	RecentOrders(ctx context.Context, userID uint64, limit int) ([]repository.OrderSummary, error)
	RecentProjects(ctx context.Context, userID uint64, limit int) ([]repository.ProjectSummary, error)
	OpenChats(ctx context.Context, userID uint64) ([]repository.ChatSummary, error)
	ScheduledConsultations(ctx context.Context, userID uint64) ([]repository.ConsultationSummary, error)
}

// UserAdminHandler implements the admin customer listing and detail
// endpoints.
type UserAdminHandler struct {
	Users    CustomerStore
	Activity ActivityStore
}

func NewUserAdminHandler(users CustomerStore, activity ActivityStore) *UserAdminHandler {
	return &UserAdminHandler{Users: users, Activity: activity}
}

type customerStats struct {
	TotalProjects int64 `json:"totalProjects"`
	TotalOrders   int64 `json:"totalOrders"`
	ActiveOrders  int   `json:"activeOrders"`
	ActiveChats   int64 `json:"activeChats"`
	PendingOrders int   `json:"pendingOrders"`
}

type customerRow struct {
	ID            uint64                    `json:"id"`
	Name          string                    `json:"name"`
	Email         string                    `json:"email"`
	Role          string                    `json:"role"`
	EmailVerified bool                      `json:"emailVerified"`
	AvatarURL     *string                   `json:"avatarUrl"`
	CreatedAt     time.Time                 `json:"createdAt"`
	Stats         customerStats             `json:"stats"`
	RecentOrders  []repository.OrderSummary `json:"recentOrders"`
}

// List returns one page of customers with per-user activity stats. The
// page of users is fetched first, then each aggregate runs as a single
// grouped query over the page's id set, never one query per row.
func (h *UserAdminHandler) List(c echo.Context) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	users, total, err := h.Users.ListCustomers(ctx, limit, (page-1)*limit)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	ids := make([]uint64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	orderCounts, err := h.Activity.OrderCounts(ctx, ids)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	projectCounts, err := h.Activity.ProjectCounts(ctx, ids)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	chatCounts, err := h.Activity.OpenChatCounts(ctx, ids)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	recentOrders, err := h.Activity.RecentPaidOrders(ctx, ids, 5)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	rows := make([]customerRow, 0, len(users))
	for _, u := range users {
		recent := recentOrders[u.ID]
		if recent == nil {
			recent = []repository.OrderSummary{}
		}
		active, pending := 0, 0
		for _, o := range recent {
			switch o.Status {
			case "in_progress":
				active++
			case "paid":
				pending++
			}
		}
		rows = append(rows, customerRow{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Role:          u.Role,
			EmailVerified: u.EmailVerified,
			AvatarURL:     u.AvatarURL,
			CreatedAt:     u.CreatedAt,
			Stats: customerStats{
				TotalProjects: projectCounts[u.ID],
				TotalOrders:   orderCounts[u.ID],
				ActiveOrders:  active,
				ActiveChats:   chatCounts[u.ID],
				PendingOrders: pending,
			},
			RecentOrders: recent,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    rows,
		"pagination": echo.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPagesOf(total, limit),
		},
	})
}

// GetDetail returns one user's profile with recent projects, recent
// orders, open chats and scheduled consultations.
func (h *UserAdminHandler) GetDetail(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, codeUserMissing, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	projects, err := h.Activity.RecentProjects(ctx, id, 5)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	orders, err := h.Activity.RecentOrders(ctx, id, 10)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	chats, err := h.Activity.OpenChats(ctx, id)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	consultations, err := h.Activity.ScheduledConsultations(ctx, id)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	return respond(c, http.StatusOK, echo.Map{
		"user":          viewOf(u),
		"projects":      projects,
		"orders":        orders,
		"openChats":     chats,
		"consultations": consultations,
	})
}
