package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relicworks/itemgate/pkg/app/analyze"
	handlers "github.com/relicworks/itemgate/pkg/handlers/http"
	"github.com/relicworks/itemgate/pkg/ratelimit"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	reply string
	err   error
}

func (s *stubModel) AnalyzeImage(context.Context, string, []byte, string) (string, error) {
	return s.reply, s.err
}

const validReply = `{"name":"Moonlit Key","description":"Hums softly.","effect":"Opens one lock"}`

func newTestApp(model analyze.ModelClient, clientLimit, dailyLimit int) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := ratelimit.NewStore()
	analyzer := analyze.NewAnalyzer(analyze.AnalyzerDI{
		Logger:        logger,
		ClientLimiter: ratelimit.NewClientLimiter(store, clientLimit, time.Hour, nil),
		DailyLimiter:  ratelimit.NewDailyLimiter(store, dailyLimit, nil),
		Model:         model,
	})

	app := fiber.New()
	app.Post("/api/v1/analyze-item", handlers.NewAnalyzeItemHandler(logger, analyzer).Handle)
	return app
}

func postAnalyze(t *testing.T, app *fiber.App, body, forwardedFor string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-item", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func validBody() string {
	image := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	return fmt.Sprintf(`{"image":%q,"rarity":"epic"}`, image)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAnalyzeItemHandler_Success(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 10, 1000)

	resp := postAnalyze(t, app, validBody(), "203.0.113.7")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	assert.Equal(t, "1", resp.Header.Get("X-Daily-Usage"))
	assert.Equal(t, "1000", resp.Header.Get("X-Daily-Limit"))

	body := decodeBody(t, resp)
	assert.Equal(t, "Moonlit Key", body["name"])
	assert.Equal(t, "Hums softly.", body["description"])
	assert.Equal(t, "Opens one lock", body["effect"])
}

func TestAnalyzeItemHandler_EleventhRequestRateLimited(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 10, 1000)

	for i := 0; i < 10; i++ {
		resp := postAnalyze(t, app, validBody(), "203.0.113.7")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := postAnalyze(t, app, validBody(), "203.0.113.7")

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body := decodeBody(t, resp)
	assert.Equal(t, "rate limit exceeded", body["error"])
	retryAfter, ok := body["retryAfter"].(float64)
	require.True(t, ok, "retryAfter must be a number")
	assert.GreaterOrEqual(t, retryAfter, float64(0))
}

func TestAnalyzeItemHandler_DailyLimitReached(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 10, 1)

	resp := postAnalyze(t, app, validBody(), "203.0.113.7")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postAnalyze(t, app, validBody(), "198.51.100.1")

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "daily limit reached", body["error"])
	assert.Equal(t, float64(1), body["dailyUsage"])
	assert.Equal(t, float64(1), body["dailyLimit"])
}

func TestAnalyzeItemHandler_MissingRarityStillConsumesQuota(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 10, 1000)

	image := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	resp := postAnalyze(t, app, fmt.Sprintf(`{"image":%q}`, image), "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "image and rarity are required", body["error"])

	// The 400 above already burned one admission.
	resp = postAnalyze(t, app, validBody(), "203.0.113.7")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "8", resp.Header.Get("X-RateLimit-Remaining"))
	resp.Body.Close()
}

func TestAnalyzeItemHandler_UnreadableBodyTreatedAsMissingFields(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 10, 1000)

	resp := postAnalyze(t, app, "not json at all", "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeItemHandler_MissingCredential(t *testing.T) {
	app := newTestApp(nil, 10, 1000)

	resp := postAnalyze(t, app, validBody(), "203.0.113.7")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "API key not configured", body["error"])
}

func TestAnalyzeItemHandler_UpstreamFailure(t *testing.T) {
	app := newTestApp(&stubModel{err: errors.New("connection reset")}, 10, 1000)

	resp := postAnalyze(t, app, validBody(), "203.0.113.7")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "failed to analyze item", body["error"])
	assert.Contains(t, body["details"], "connection reset")
	assert.NotEmpty(t, body["timestamp"])
}

func TestAnalyzeItemHandler_ClientsPartitionedByForwardedAddress(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 1, 1000)

	resp := postAnalyze(t, app, validBody(), "203.0.113.7, 10.0.0.1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Same first hop, same bucket.
	resp = postAnalyze(t, app, validBody(), "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()

	// Different origin, fresh window.
	resp = postAnalyze(t, app, validBody(), "198.51.100.1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAnalyzeItemHandler_HeaderlessClientsShareOneBucket(t *testing.T) {
	app := newTestApp(&stubModel{reply: validReply}, 1, 1000)

	resp := postAnalyze(t, app, validBody(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postAnalyze(t, app, validBody(), "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}
