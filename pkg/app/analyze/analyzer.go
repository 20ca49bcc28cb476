package analyze

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/relicworks/itemgate/pkg/domain/item"
	"github.com/relicworks/itemgate/pkg/infra/prometheus"
	"github.com/relicworks/itemgate/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModelTimeout = 30 * time.Second

	imageMIMEType = "image/jpeg"
)

// ModelClient is the single upstream dependency: a generative model that
// turns an instruction plus an inline image into free-form text.
type ModelClient interface {
	AnalyzeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error)
}

// Request is the decoded analyze-item request body.
type Request struct {
	Image  string `json:"image"`
	Rarity string `json:"rarity"`
}

// Result is a successful analysis outcome with the quota state observed on
// the way in.
type Result struct {
	Item     item.ItemRecord
	Client   ratelimit.Decision
	Daily    ratelimit.DailyDecision
	Degraded bool
}

type AnalyzerDI struct {
	Logger        *logrus.Logger
	ClientLimiter *ratelimit.ClientLimiter
	DailyLimiter  *ratelimit.DailyLimiter
	Model         ModelClient
	Prompts       *PromptBuilder
	Timeout       time.Duration
}

// Analyzer sequences admission, validation, the model call and resolution for
// one analyze request.
type Analyzer struct {
	logger        *logrus.Logger
	clientLimiter *ratelimit.ClientLimiter
	dailyLimiter  *ratelimit.DailyLimiter
	model         ModelClient
	prompts       *PromptBuilder
	timeout       time.Duration
}

func NewAnalyzer(di AnalyzerDI) *Analyzer {
	timeout := di.Timeout
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	prompts := di.Prompts
	if prompts == nil {
		prompts = NewPromptBuilder(nil)
	}
	return &Analyzer{
		logger:        di.Logger,
		clientLimiter: di.ClientLimiter,
		dailyLimiter:  di.DailyLimiter,
		model:         di.Model,
		prompts:       prompts,
		timeout:       timeout,
	}
}

// ClientLimit returns the per-client window ceiling.
func (a *Analyzer) ClientLimit() int {
	return a.clientLimiter.Limit()
}

// Analyze runs the full pipeline for one request. Both limiters run before
// the input is inspected, so a request later rejected for missing fields has
// already consumed quota. Every failure returns one of the typed errors from
// this package.
func (a *Analyzer) Analyze(ctx context.Context, clientID string, req Request) (*Result, error) {
	log := a.logger.WithFields(logrus.Fields{
		"request_id": uuid.New().String(),
		"client_id":  clientID,
	})

	clientDecision := a.clientLimiter.Check(clientID)
	if !clientDecision.Allowed {
		prometheus.RateLimitRejections.WithLabelValues("client").Inc()
		log.WithField("reset_at", clientDecision.ResetAt.Format(time.RFC3339)).
			Info("client rate limit exceeded")
		return nil, &ClientQuotaError{
			Decision:   clientDecision,
			RetryAfter: clientDecision.RetryAfter(time.Now()),
		}
	}

	dailyDecision := a.dailyLimiter.Check()
	if !dailyDecision.Allowed {
		prometheus.RateLimitRejections.WithLabelValues("daily").Inc()
		log.WithFields(logrus.Fields{
			"used":  dailyDecision.Used,
			"limit": dailyDecision.Limit,
		}).Info("daily usage limit reached")
		return nil, &DailyQuotaError{Decision: dailyDecision}
	}

	if req.Image == "" || req.Rarity == "" {
		return nil, &ValidationError{Message: "image and rarity are required"}
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, &ValidationError{Message: "image must be base64 encoded"}
	}

	if a.model == nil {
		return nil, &ConfigurationError{Message: "API key not configured"}
	}

	rarity, _ := item.ParseRarity(req.Rarity)
	prompt := a.prompts.Build(rarity)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.model.AnalyzeImage(callCtx, prompt.Instruction, imageBytes, imageMIMEType)
	if err != nil {
		prometheus.ModelFailuresTotal.Inc()
		log.WithError(err).Error("model call failed")
		return nil, &UpstreamError{Err: err, Timestamp: time.Now()}
	}

	record, degraded := Resolve(raw, rarity)
	if degraded {
		prometheus.FallbackDegradationsTotal.Inc()
		log.WithField("rarity", string(rarity)).
			Warn("model response had no parseable object, serving fallback record")
	}

	return &Result{
		Item:     record,
		Client:   clientDecision,
		Daily:    dailyDecision,
		Degraded: degraded,
	}, nil
}
