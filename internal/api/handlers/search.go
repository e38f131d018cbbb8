package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/search"
	"github.com/mediadeck/crm/backend/internal/services"
	"github.com/mediadeck/crm/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type SearchHandler struct {
	searchService *services.SearchService
	logger        *logrus.Logger
	fetchTimeout  time.Duration
}

func NewSearchHandler(searchService *services.SearchService, logger *logrus.Logger, fetchTimeout time.Duration) *SearchHandler {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
		fetchTimeout:  fetchTimeout,
	}
}

// HandleSearch processes GET /api/search requests.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	startTime := time.Now()
	requestID := requestID(c)

	req := search.ParseSearchRequest(c.Request.URL.Query())

	userID := c.GetHeader("X-User-Id")
	sessionID := c.GetHeader("X-Session-Id")
	if !utils.ValidateSessionID(sessionID) {
		sessionID = utils.GenerateSessionID(c.ClientIP() + c.Request.UserAgent())
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
	defer cancel()

	user := h.searchService.UserContextFor(ctx, userID, parseLocation(c.GetHeader("X-User-Location")))

	response, err := h.searchService.EnhancedSearch(ctx, req, user, requestID, sessionID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"query":      req.Query,
		}).Error("Enhanced search failed")
		c.JSON(http.StatusInternalServerError, models.SearchErrorResponse{
			Success: false,
			Error:   "Search failed",
			Message: "An error occurred while processing your search. Please try again.",
			Metadata: models.Metadata{
				RequestID: requestID,
				Duration:  time.Since(startTime).Milliseconds(),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

type searchAction struct {
	Action string `json:"action" binding:"required"`
}

// HandleSearchAction processes POST /api/search requests.
func (h *SearchHandler) HandleSearchAction(c *gin.Context) {
	var body searchAction
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.WithError(err).Error("Invalid search action request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	switch body.Action {
	case "getFilterOptions":
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
		defer cancel()

		response, err := h.searchService.FilterOptions(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load filter options")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load filter options", err)
			return
		}
		c.JSON(http.StatusOK, response)
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid action", nil)
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// parseLocation decodes the optional "City, ST" location header.
func parseLocation(header string) *search.Location {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	parts := strings.SplitN(header, ",", 2)
	loc := &search.Location{City: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		loc.State = strings.TrimSpace(parts[1])
	}
	if loc.City == "" && loc.State == "" {
		return nil
	}
	return loc
}
