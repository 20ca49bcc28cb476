package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/relicworks/itemgate/pkg/app/analyze"
	"github.com/relicworks/itemgate/pkg/infra/prometheus"
	"github.com/relicworks/itemgate/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

type analyzeItemHandler struct {
	logger   *logrus.Logger
	analyzer *analyze.Analyzer
}

func NewAnalyzeItemHandler(logger *logrus.Logger, analyzer *analyze.Analyzer) Handler {
	return &analyzeItemHandler{
		logger:   logger,
		analyzer: analyzer,
	}
}

func (h *analyzeItemHandler) Handle(c *fiber.Ctx) error {
	started := time.Now()
	defer func() {
		prometheus.AnalyzeLatency.Observe(float64(time.Since(started).Milliseconds()))
	}()

	clientID := extractClientID(c)

	var req analyze.Request
	if err := c.BodyParser(&req); err != nil {
		// An unreadable body still goes through the admission path; the
		// analyzer rejects it as missing fields afterwards.
		h.logger.WithError(err).Debug("failed to parse analyze request body")
		req = analyze.Request{}
	}

	result, err := h.analyzer.Analyze(c.Context(), clientID, req)
	if err != nil {
		return h.renderError(c, err)
	}

	prometheus.AnalyzeRequestsTotal.WithLabelValues("ok").Inc()
	h.setClientQuotaHeaders(c, result.Client)
	c.Set("X-Daily-Usage", strconv.Itoa(result.Daily.Used))
	c.Set("X-Daily-Limit", strconv.Itoa(result.Daily.Limit))

	return c.Status(fiber.StatusOK).JSON(result.Item)
}

func (h *analyzeItemHandler) renderError(c *fiber.Ctx, err error) error {
	var clientQuotaErr *analyze.ClientQuotaError
	if errors.As(err, &clientQuotaErr) {
		prometheus.AnalyzeRequestsTotal.WithLabelValues("client_limited").Inc()
		h.setClientQuotaHeaders(c, clientQuotaErr.Decision)
		c.Set("Retry-After", strconv.Itoa(clientQuotaErr.RetryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "rate limit exceeded",
			"message": fmt.Sprintf(
				"up to %d requests are allowed per hour, try again after %s",
				h.analyzer.ClientLimit(),
				clientQuotaErr.Decision.ResetAt.Format(time.RFC3339),
			),
			"retryAfter": clientQuotaErr.RetryAfter,
		})
	}

	var dailyQuotaErr *analyze.DailyQuotaError
	if errors.As(err, &dailyQuotaErr) {
		prometheus.AnalyzeRequestsTotal.WithLabelValues("daily_limited").Inc()
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      "daily limit reached",
			"message":    "the daily usage ceiling has been reached, try again tomorrow",
			"dailyUsage": dailyQuotaErr.Decision.Used,
			"dailyLimit": dailyQuotaErr.Decision.Limit,
		})
	}

	var validationErr *analyze.ValidationError
	if errors.As(err, &validationErr) {
		prometheus.AnalyzeRequestsTotal.WithLabelValues("validation_error").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
		})
	}

	var configErr *analyze.ConfigurationError
	if errors.As(err, &configErr) {
		prometheus.AnalyzeRequestsTotal.WithLabelValues("config_error").Inc()
		h.logger.WithError(err).Error("analyze request failed on configuration")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": configErr.Message,
		})
	}

	var upstreamErr *analyze.UpstreamError
	if errors.As(err, &upstreamErr) {
		prometheus.AnalyzeRequestsTotal.WithLabelValues("upstream_error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     "failed to analyze item",
			"details":   upstreamErr.Err.Error(),
			"timestamp": upstreamErr.Timestamp.Format(time.RFC3339),
		})
	}

	prometheus.AnalyzeRequestsTotal.WithLabelValues("upstream_error").Inc()
	h.logger.WithError(err).Error("analyze request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":     "failed to analyze item",
		"details":   err.Error(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *analyzeItemHandler) setClientQuotaHeaders(c *fiber.Ctx, d ratelimit.Decision) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(h.analyzer.ClientLimit()))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// extractClientID partitions quota by request origin: the first entry of
// X-Forwarded-For, else X-Real-IP, else a shared "unknown" bucket for clients
// that present neither header.
func extractClientID(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}
