package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "climbingpill/internal/errors"
	"climbingpill/internal/middleware"
	"climbingpill/internal/services"
)

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	service    AnalyticsServiceInterface
	logger     *slog.Logger
	query      *middleware.QueryParamValidator
	validation *middleware.ValidationMiddleware
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		service:    service,
		logger:     logger.With(slog.String("component", "analytics_handler")),
		query:      middleware.NewQueryParamValidator(logger),
		validation: middleware.NewValidationMiddleware(logger),
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetOverview)
	r.Get("/monthly", h.GetMonthlyActivity)
	r.Get("/locations", h.GetTopLocations)
	r.Get("/growth", h.GetGrowth)
	r.Get("/engagement", h.GetEngagement)
	r.Get("/utilization", h.GetUtilization)
	r.Get("/coaches", h.GetCoachRoster)
	r.Post("/refresh", h.Refresh)
	r.Post("/query", h.QueryScoped)

	r.Get("/users", h.GetUserSummaries)
	r.Route("/users/{email}", func(r chi.Router) {
		r.Use(h.EmailCtx)
		r.Get("/summary", h.GetUserSummary)
		r.Get("/cohort", h.GetUserCohort)
	})

	return r
}

// EmailCtx middleware validates the email URL parameter
func (h *AnalyticsHandler) EmailCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")
		if decoded, err := url.PathUnescape(email); err == nil {
			email = decoded
		}
		if email == "" {
			render.Render(w, r, apierrors.ErrValidation("email", "Email is required"))
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			render.Render(w, r, apierrors.ErrValidation("email", "Invalid email address"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetOverview handles GET /api/analytics
func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch overview")
		return
	}
	render.JSON(w, r, overview)
}

// GetMonthlyActivity handles GET /api/analytics/monthly
func (h *AnalyticsHandler) GetMonthlyActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.service.MonthlyActivity(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch monthly activity")
		return
	}
	render.JSON(w, r, activity)
}

// GetTopLocations handles GET /api/analytics/locations
func (h *AnalyticsHandler) GetTopLocations(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 100, 10)
	if !ok {
		return
	}

	locations, err := h.service.TopLocations(r.Context(), limit)
	if err != nil {
		h.renderError(w, r, err, "fetch top locations")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// GetGrowth handles GET /api/analytics/growth
func (h *AnalyticsHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	growth, err := h.service.Growth(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch growth trends")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"trends": growth,
		"count":  len(growth),
	})
}

// GetEngagement handles GET /api/analytics/engagement
func (h *AnalyticsHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.Engagement(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch engagement series")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"series": series,
		"count":  len(series),
	})
}

// GetUtilization handles GET /api/analytics/utilization
func (h *AnalyticsHandler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	utilization, err := h.service.Utilization(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch utilization")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"locations": utilization,
		"count":     len(utilization),
	})
}

// GetUserSummaries handles GET /api/analytics/users
func (h *AnalyticsHandler) GetUserSummaries(w http.ResponseWriter, r *http.Request) {
	risk, ok := h.query.ValidateEnum(w, r, "risk", []string{"low", "medium", "high"}, "")
	if !ok {
		return
	}

	summaries, err := h.service.UserSummaries(r.Context(), risk)
	if err != nil {
		h.renderError(w, r, err, "fetch user summaries")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"users": summaries,
		"count": len(summaries),
	})
}

// GetUserSummary handles GET /api/analytics/users/{email}/summary
func (h *AnalyticsHandler) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	summary, err := h.service.UserSummary(r.Context(), email)
	if err != nil {
		h.renderError(w, r, err, "fetch user summary")
		return
	}
	render.JSON(w, r, summary)
}

// GetUserCohort handles GET /api/analytics/users/{email}/cohort
func (h *AnalyticsHandler) GetUserCohort(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	report, err := h.service.UserCohort(r.Context(), email)
	if err != nil {
		h.renderError(w, r, err, "fetch user cohort")
		return
	}
	render.JSON(w, r, report)
}

// GetCoachRoster handles GET /api/analytics/coaches
func (h *AnalyticsHandler) GetCoachRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.service.CoachRoster(r.Context())
	if err != nil {
		h.renderError(w, r, err, "fetch coach roster")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"coaches": roster,
		"count":   len(roster),
	})
}

// Refresh handles POST /api/analytics/refresh
func (h *AnalyticsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "refresh failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.SourceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "refreshed",
	})
}

// QueryScoped handles POST /api/analytics/query. The body names the
// users visible to the caller; analytics are re-derived over that
// subset only.
func (h *AnalyticsHandler) QueryScoped(w http.ResponseWriter, r *http.Request) {
	var query services.ScopedQuery
	if err := render.DecodeJSON(r.Body, &query); err != nil {
		render.Render(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_JSON",
			"Request body is not valid JSON",
		))
		return
	}

	if err := h.validation.ValidateStruct(query); err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			render.Render(w, r, apiErr)
		} else {
			render.Render(w, r, apierrors.InternalError(err))
		}
		return
	}

	report, err := h.service.ScopedAnalytics(r.Context(), query)
	if err != nil {
		h.renderError(w, r, err, "scoped analytics query")
		return
	}
	render.JSON(w, r, report)
}

// renderError maps service errors to API errors
func (h *AnalyticsHandler) renderError(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrNotLoaded):
		render.Render(w, r, apierrors.New(
			http.StatusServiceUnavailable,
			"SNAPSHOT_NOT_LOADED",
			"Analytics data has not been loaded yet",
		))
	case errors.Is(err, services.ErrUserNotFound):
		render.Render(w, r, apierrors.UserNotFoundError(chi.URLParam(r, "email")))
	default:
		render.Render(w, r, apierrors.InternalError(err))
	}
}
