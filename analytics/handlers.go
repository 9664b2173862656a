package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// Handler serves the collect beacon and the admin stats API.
type Handler struct {
	store   *Store
	limiter *rateLimiter
}

// NewHandler wraps a Store with HTTP endpoints. The collect endpoint is
// rate-limited per IP so a stuck client cannot flood the database.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:   store,
		limiter: newRateLimiter(60, time.Minute),
	}
}

// CollectRequest is the beacon payload sent by analytics.js. A pageview
// carries path, referrer and screen size; the unload beacon carries the
// same path plus duration_sec.
type CollectRequest struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	UserAgent   string `json:"user_agent"`
	DurationSec int    `json:"duration_sec"`
}

func (r CollectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required, validation.Length(1, 2048)),
		validation.Field(&r.Referrer, validation.Length(0, 2048)),
		validation.Field(&r.ScreenSize, validation.Length(0, 32)),
		validation.Field(&r.UserAgent, validation.Length(0, 512)),
		validation.Field(&r.DurationSec, validation.Min(0), validation.Max(86400)),
	)
}

// Collect records one beacon hit. It always answers 204 once the payload
// is readable: storage problems are logged, never surfaced to the
// visitor's browser.
func (h *Handler) Collect(c echo.Context) error {
	ip := c.RealIP()
	if !h.limiter.allow(ip) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	// Server-side honor of Do Not Track; the script also checks it
	// before sending anything.
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := req.Validate(); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	ua := req.UserAgent
	if ua == "" {
		ua = c.Request().UserAgent()
	}
	now := time.Now()

	if IsBot(ua) {
		err := h.store.SaveBotVisit(BotVisit{
			BotName:   BotName(ua),
			IPHash:    HashIP(ip),
			UserAgent: ua,
			Path:      req.Path,
			Timestamp: now,
		})
		if err != nil {
			slog.Error("analytics bot visit", "err", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := VisitorID(ip, ua)

	// The unload beacon reuses the endpoint: a positive duration updates
	// the pageview recorded earlier instead of adding a new one.
	if req.DurationSec > 0 {
		if err := h.store.UpdateVisitDuration(visitorID, req.Path, req.DurationSec); err != nil {
			slog.Error("analytics duration", "err", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(ua)
	err := h.store.SaveVisit(Visit{
		VisitorID:  visitorID,
		SessionID:  sessionID(visitorID, now),
		IPHash:     HashIP(ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       req.Path,
		Referrer:   CleanReferrer(req.Referrer),
		ScreenSize: req.ScreenSize,
		Timestamp:  now,
	})
	if err != nil {
		slog.Error("analytics visit", "err", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// sessionID groups a visitor's views within one UTC day. It rolls over
// at midnight, so no long-lived identifier accumulates.
func sessionID(visitorID string, now time.Time) string {
	sum := sha256.Sum256([]byte(visitorID + "|" + now.UTC().Format("2006-01-02")))
	return hex.EncodeToString(sum[:])[:16]
}

// StatsResponse is the admin stats API payload.
type StatsResponse struct {
	*Stats
	RealtimeVisitors int `json:"realtime_visitors"`
}

// GetStats returns aggregated visit stats for ?period=today|week|month|year.
func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.store.StatsForPeriod(c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	realtime, err := h.store.RealtimeVisitors()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	return c.JSON(http.StatusOK, StatsResponse{Stats: stats, RealtimeVisitors: realtime})
}

// GetBotStats returns aggregated crawler stats for the same periods.
func (h *Handler) GetBotStats(c echo.Context) error {
	stats, err := h.store.BotStatsForPeriod(c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stats unavailable")
	}
	return c.JSON(http.StatusOK, stats)
}

// RegisterRoutes mounts the public collect endpoint and the admin-only
// stats API.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminRequired echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)

	api := e.Group("/admin/analytics/api", adminRequired)
	api.GET("/stats", h.GetStats)
	api.GET("/bot-stats", h.GetBotStats)
}
