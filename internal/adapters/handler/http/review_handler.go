package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/services"
)

// ReviewHandler exposes the review sitting over HTTP for the companion
// web app. The user is identified by the X-User-ID header; authentication
// happens upstream of this service.
type ReviewHandler struct {
	queue *services.QueueService
	quota *services.QuotaService
}

func NewReviewHandler(queue *services.QueueService, quota *services.QuotaService) *ReviewHandler {
	return &ReviewHandler{
		queue: queue,
		quota: quota,
	}
}

type rateRequest struct {
	Rating domain.Rating `json:"rating" binding:"required"`
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/reviews")
	{
		reviews.GET("/session", h.StartSession)
		reviews.GET("/current", h.Current)
		reviews.POST("/rate", h.Rate)
		reviews.POST("/skip", h.Skip)
		reviews.GET("/preview/:itemID", h.Preview)
		reviews.GET("/quota", h.Quota)
	}
}

func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return "", false
	}
	return userID, true
}

func sessionJSON(sess *domain.Session) gin.H {
	return gin.H{
		"total":     len(sess.ItemIDs),
		"cursor":    sess.Cursor,
		"remaining": sess.Remaining(),
		"complete":  sess.IsComplete(),
	}
}

// StartSession restores the sitting persisted earlier today, or fetches a
// fresh queue of due and new items. An empty queue is a normal response,
// not an error.
func (h *ReviewHandler) StartSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	now := time.Now()
	sess, err := h.queue.Start(c.Request.Context(), userID, now)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sessionJSON(sess),
		"quota":   h.quota.Remaining(c.Request.Context(), userID, now),
	})
}

// Current returns the item under the cursor.
func (h *ReviewHandler) Current(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	item, sess, err := h.queue.Current(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":    item,
		"session": sessionJSON(sess),
	})
}

// Rate applies a rating to the current item and advances the sitting.
func (h *ReviewHandler) Rate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if !req.Rating.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rating"})
		return
	}

	state, sess, err := h.queue.SubmitRating(c.Request.Context(), userID, req.Rating, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"interval": scheduler.FormatInterval(state.IntervalDays),
		"session":  sessionJSON(sess),
	})
}

// Skip defers the current item to the end of the sitting without scoring.
func (h *ReviewHandler) Skip(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.queue.Skip(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sessionJSON(sess)})
}

// Preview shows what each rating would do to an item. Nothing is persisted.
func (h *ReviewHandler) Preview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	itemID := c.Param("itemID")

	outcomes, err := h.queue.Preview(c.Request.Context(), userID, itemID, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	labels := make(map[string]gin.H, len(outcomes))
	for rating, entry := range outcomes {
		labels[rating.String()] = gin.H{
			"label":         entry.Label,
			"interval_days": entry.State.IntervalDays,
			"status":        entry.State.Status,
			"due_at":        entry.State.DueAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"outcomes": labels})
}

// Quota reports how many new items may still enter a sitting today.
func (h *ReviewHandler) Quota(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.quota.Remaining(c.Request.Context(), userID, time.Now()))
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQueue):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active review session"})

	case errors.Is(err, domain.ErrSessionComplete):
		c.JSON(http.StatusConflict, gin.H{"error": "session complete", "message": "all items reviewed, start a new session"})

	case errors.Is(err, domain.ErrItemNotFound) || errors.Is(err, domain.ErrStateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
