package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/snapdeck/snapdeck-review-engine/internal/adapters/handler/http"
	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/repository"
	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/session"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/services"
)

type reviewEnv struct {
	router   *gin.Engine
	items    *repository.InMemoryItemStore
	states   *repository.InMemoryReviewStateRepository
	logs     *repository.InMemoryReviewLogRepository
	sessions *session.MemorySessionStore
}

func setupReviewRouter(dailyLimit int) *reviewEnv {
	gin.SetMode(gin.TestMode)

	env := &reviewEnv{
		items:    repository.NewInMemoryItemStore(),
		states:   repository.NewInMemoryReviewStateRepository(),
		logs:     repository.NewInMemoryReviewLogRepository(),
		sessions: session.NewMemorySessionStore(),
	}

	quota := services.NewQuotaService(env.logs, repository.StaticConfigSource{Limit: dailyLimit})
	queue := services.NewQueueService(env.items, env.states, env.logs, env.sessions, quota, scheduler.DefaultConfig())

	handler := adapterHTTP.NewReviewHandler(queue, quota)

	r := gin.New()
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)

	env.router = r
	return env
}

func (e *reviewEnv) addCard(id string) {
	e.items.Add(&domain.Item{
		ID:        id,
		UserID:    "user-1",
		Front:     "front " + id,
		Back:      "back " + id,
		CreatedAt: time.Now().UTC(),
	})
}

func (e *reviewEnv) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestReviewHandler_StartSession(t *testing.T) {
	t.Run("Returns the queue and today's quota", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.addCard("b")

		w := env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)

		sess := body["session"].(map[string]any)
		assert.Equal(t, float64(2), sess["total"])
		assert.Equal(t, float64(2), sess["remaining"])
		assert.Equal(t, false, sess["complete"])

		quota := body["quota"].(map[string]any)
		assert.Equal(t, float64(10), quota["limit"])
	})

	t.Run("Empty queue is a 200, not an error", func(t *testing.T) {
		env := setupReviewRouter(10)

		w := env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		sess := decodeBody(t, w)["session"].(map[string]any)
		assert.Equal(t, float64(0), sess["total"])
	})

	t.Run("Missing user header is a 401", func(t *testing.T) {
		env := setupReviewRouter(10)

		w := env.do("GET", "/api/v1/reviews/session", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestReviewHandler_Current(t *testing.T) {
	t.Run("Returns the card under the cursor", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		w := env.do("GET", "/api/v1/reviews/current", "user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		item := decodeBody(t, w)["item"].(map[string]any)
		assert.Equal(t, "a", item["id"])
		assert.Equal(t, "front a", item["front"])
	})

	t.Run("No session is a 404", func(t *testing.T) {
		env := setupReviewRouter(10)

		w := env.do("GET", "/api/v1/reviews/current", "user-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReviewHandler_Rate(t *testing.T) {
	t.Run("Good rating advances and reports the new interval", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.addCard("b")
		env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		w := env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)

		state := body["state"].(map[string]any)
		assert.Equal(t, "review", state["status"])
		assert.Equal(t, float64(3), state["interval_days"])
		assert.Equal(t, "3d", body["interval"])

		sess := body["session"].(map[string]any)
		assert.Equal(t, float64(1), sess["cursor"])
	})

	t.Run("Again keeps the sitting size and cursor", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.addCard("b")
		env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		w := env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "again"})

		assert.Equal(t, http.StatusOK, w.Code)
		sess := decodeBody(t, w)["session"].(map[string]any)
		assert.Equal(t, float64(0), sess["cursor"])
		assert.Equal(t, float64(2), sess["total"])
	})

	t.Run("Unknown rating name is a 400", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.do("GET", "/api/v1/reviews/session", "user-1", nil)

		w := env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "meh"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rating after completion is a 404 once the session is cleared", func(t *testing.T) {
		env := setupReviewRouter(10)
		env.addCard("a")
		env.addCard("b")
		env.do("GET", "/api/v1/reviews/session", "user-1", nil)
		env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})
		env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})

		// Session was cleared on completion, so the next rate sees no queue.
		w := env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("No session is a 404", func(t *testing.T) {
		env := setupReviewRouter(10)

		w := env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReviewHandler_Skip(t *testing.T) {
	env := setupReviewRouter(10)
	env.addCard("a")
	env.addCard("b")
	env.do("GET", "/api/v1/reviews/session", "user-1", nil)

	w := env.do("POST", "/api/v1/reviews/skip", "user-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	sess := decodeBody(t, w)["session"].(map[string]any)
	assert.Equal(t, float64(0), sess["cursor"])
	assert.Equal(t, float64(2), sess["total"])
}

func TestReviewHandler_Preview(t *testing.T) {
	env := setupReviewRouter(10)
	env.addCard("a")

	w := env.do("GET", "/api/v1/reviews/preview/a", "user-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	outcomes := decodeBody(t, w)["outcomes"].(map[string]any)
	require.Len(t, outcomes, 4)

	good := outcomes["good"].(map[string]any)
	assert.Equal(t, "3d", good["label"])
	assert.Equal(t, "review", good["status"])
}

func TestReviewHandler_Quota(t *testing.T) {
	env := setupReviewRouter(3)
	env.addCard("a")
	env.do("GET", "/api/v1/reviews/session", "user-1", nil)
	env.do("POST", "/api/v1/reviews/rate", "user-1", map[string]string{"rating": "good"})

	w := env.do("GET", "/api/v1/reviews/quota", "user-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["limit"])
	assert.Equal(t, float64(1), body["introduced"])
	assert.Equal(t, float64(2), body["remaining"])
}
