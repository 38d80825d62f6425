package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-insights/internal/http/response"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/pkg/ctxutil"
	"github.com/yungbote/neurobridge-insights/internal/services"
)

const maxComputeBodyBytes = 2 << 20

type InsightsHandler struct {
	insights  services.InsightsService
	refresher services.InsightsRefresher
}

// NewInsightsHandler wires the insights routes. refresher should be an asynchronous one; nil means refreshes run inline.
func NewInsightsHandler(svc services.InsightsService, refresher services.InsightsRefresher) *InsightsHandler {
	return &InsightsHandler{insights: svc, refresher: refresher}
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("missing or invalid token"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// GET /api/insights
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))
	res, err := h.insights.GetInsights(c.Request.Context(), userID, refresh)
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/insights/refresh
func (h *InsightsHandler) Refresh(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if h.refresher != nil {
		if err := h.insights.Invalidate(ctx, userID, "refresh"); err != nil {
			_ = c.Error(err)
			response.RespondErr(c, err)
			return
		}
		summary, err := h.refresher.RefreshUsers(ctx, []uuid.UUID{userID})
		if err != nil {
			_ = c.Error(err)
			response.RespondErr(c, err)
			return
		}
		if summary.Async {
			c.JSON(http.StatusAccepted, gin.H{"refresh": summary})
			return
		}
	}
	res, err := h.insights.Refresh(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/insights/learning-paths
func (h *InsightsHandler) LearningPaths(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	paths, err := h.insights.LearningPaths(c.Request.Context(), userID, c.Query("subject"))
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learningPaths": paths})
}

// GET /api/insights/preferences
func (h *InsightsHandler) GetPreferences(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	view, err := h.insights.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, view)
}

type updatePreferencesRequest struct {
	insights.StudyPreferences
	Timezone string `json:"timezone"`
}

// PUT /api/insights/preferences
func (h *InsightsHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.insights.UpdatePreferences(c.Request.Context(), userID, req.StudyPreferences, req.Timezone)
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, view)
}

type computeRequest struct {
	Sessions        []insights.StudySession      `json:"sessions"`
	Progress        []insights.FlashcardProgress `json:"progress"`
	Preferences     *insights.StudyPreferences   `json:"preferences"`
	Peers           []insights.PeerStudyTime     `json:"peers"`
	PeerWindowStart *time.Time                   `json:"peerWindowStart"`
	Timezone        string                       `json:"timezone"`
}

// POST /api/insights/compute
func (h *InsightsHandler) Compute(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxComputeBodyBytes)
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "body_too_large", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := insights.Input{
		Sessions:        req.Sessions,
		Progress:        req.Progress,
		Preferences:     req.Preferences,
		Peers:           req.Peers,
		PeerWindowStart: req.PeerWindowStart,
	}
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_timezone", err)
			return
		}
		in.Location = loc
	}
	out, err := h.insights.ComputeStateless(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insights": out})
}
