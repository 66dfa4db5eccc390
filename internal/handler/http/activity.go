package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityHandler interface {
	ListRecent(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityRepo activity.ActivityLogRepository
}

func NewActivityHandler(activityRepo activity.ActivityLogRepository) ActivityHandler {
	return &activityHandlerImpl{activityRepo: activityRepo}
}

type activityLogResponse struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Action    string                 `json:"action"`
	Status    activity.Status        `json:"status"`
	StaffID   *string                `json:"staff_id,omitempty"`
	StaffName *string                `json:"staff_name,omitempty"`
	SiteName  *string                `json:"site_name,omitempty"`
	Details   string                 `json:"details"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ListRecent handles GET /activity?action=&limit=
func (h *activityHandlerImpl) ListRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultActivityLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxActivityLimit)
	}

	logs, err := h.activityRepo.ListRecent(r.Context(), q.Get("action"), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]activityLogResponse, 0, len(logs))
	for _, entry := range logs {
		result = append(result, activityLogResponse{
			ID:        entry.ID,
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Action:    entry.Action,
			Status:    entry.Status,
			StaffID:   entry.StaffID,
			StaffName: entry.StaffName,
			SiteName:  entry.SiteName,
			Details:   entry.Details,
			Metadata:  entry.Metadata,
		})
	}

	response.Success(w, result)
}
