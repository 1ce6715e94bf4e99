package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ActivityRepo reads the order/project/chat/consultation tables consumed
// by the admin user views. All access is read-only; those tables are
// written by other parts of the platform.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// OrderSummary is the slim order projection shown in admin listings.
type OrderSummary struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"-"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProjectSummary is the slim project projection for the user detail view.
type ProjectSummary struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	EstimatedCost *float64  `json:"estimatedCost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChatSummary describes one open chat session.
type ChatSummary struct {
	ID        uint64    `json:"id"`
	Mode      string    `json:"mode"`
	ChatType  string    `json:"chatType"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConsultationSummary is a scheduled consultation with the expert's name
// resolved through the experts -> users join.
type ConsultationSummary struct {
	ID          uint64    `json:"id"`
	MeetingTime time.Time `json:"meetingTime"`
	ExpertName  string    `json:"expertName"`
}

// groupedCounts runs one aggregate query keyed by the given user-id set
// and returns a user_id -> count map. It is the second pass of the
// two-pass pattern that keeps admin listings free of per-row queries.
func (r *ActivityRepo) groupedCounts(ctx context.Context, q string, userIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, strings.Replace(q, "{ids}", placeholders(len(userIDs)), 1), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var uid uint64
		var n int64
		if err := rows.Scan(&uid, &n); err != nil {
			return nil, err
		}
		out[uid] = n
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	ph := strings.Repeat("?,", n)
	return ph[:len(ph)-1]
}

// OrderCounts returns the total order count per user for the id set.
func (r *ActivityRepo) OrderCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error) {
	return r.groupedCounts(ctx,
		"SELECT user_id, COUNT(*) FROM orders WHERE user_id IN ({ids}) GROUP BY user_id", userIDs)
}

// ProjectCounts returns the total project count per user for the id set.
func (r *ActivityRepo) ProjectCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error) {
	return r.groupedCounts(ctx,
		"SELECT user_id, COUNT(*) FROM projects WHERE user_id IN ({ids}) GROUP BY user_id", userIDs)
}

// OpenChatCounts returns the open chat-session count per user for the id set.
func (r *ActivityRepo) OpenChatCounts(ctx context.Context, userIDs []uint64) (map[uint64]int64, error) {
	return r.groupedCounts(ctx,
		"SELECT user_id, COUNT(*) FROM chat_sessions WHERE user_id IN ({ids}) AND status='open' GROUP BY user_id", userIDs)
}

// RecentPaidOrders returns up to perUser most recent paid/in-progress
// orders for each user in the id set. Rows arrive newest first and are
// capped per user in memory; the admin page size keeps the scan small.
func (r *ActivityRepo) RecentPaidOrders(ctx context.Context, userIDs []uint64, perUser int) (map[uint64][]OrderSummary, error) {
	out := make(map[uint64][]OrderSummary, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	q := "SELECT id, user_id, status, total_price, created_at FROM orders" +
		" WHERE user_id IN (" + placeholders(len(userIDs)) + ") AND status IN ('paid','in_progress')" +
		" ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		if len(out[o.UserID]) < perUser {
			out[o.UserID] = append(out[o.UserID], o)
		}
	}
	return out, rows.Err()
}

// RecentOrders returns the latest orders of one user, any status.
func (r *ActivityRepo) RecentOrders(ctx context.Context, userID uint64, limit int) ([]OrderSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, status, total_price, created_at FROM orders WHERE user_id=? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]OrderSummary, 0, limit)
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RecentProjects returns the latest projects of one user.
func (r *ActivityRepo) RecentProjects(ctx context.Context, userID uint64, limit int) ([]ProjectSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, estimated_cost, created_at FROM projects WHERE user_id=? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ProjectSummary, 0, limit)
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.EstimatedCost, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// OpenChats returns the user's chat sessions that are still open.
func (r *ActivityRepo) OpenChats(ctx context.Context, userID uint64) ([]ChatSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, mode, chat_type, created_at FROM chat_sessions WHERE user_id=? AND status='open'",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ChatSummary{}
	for rows.Next() {
		var s ChatSummary
		if err := rows.Scan(&s.ID, &s.Mode, &s.ChatType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ScheduledConsultations returns the user's scheduled consultations with
// the expert's display name.
func (r *ActivityRepo) ScheduledConsultations(ctx context.Context, userID uint64) ([]ConsultationSummary, error) {
	const q = `SELECT c.id, c.meeting_time, u.name
		FROM consultations c
		JOIN experts e ON e.id = c.expert_id
		JOIN users u ON u.id = e.user_id
		WHERE c.user_id = ? AND c.status = 'scheduled'
		ORDER BY c.meeting_time ASC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ConsultationSummary{}
	for rows.Next() {
		var cs ConsultationSummary
		if err := rows.Scan(&cs.ID, &cs.MeetingTime, &cs.ExpertName); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
