package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/metrics"
	"github.com/spigell/talent-matcher/internal/utils"
)

const (
	// DefaultTimeout is generous because models may run on constrained hardware.
	DefaultTimeout      = 5 * time.Minute
	defaultMaxLogLength = 200
)

// Completion is the outcome of one completion call. Exactly one of Response and Error is set.
type Completion struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func failed(format string, args ...any) Completion {
	return Completion{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Gateway turns a prompt into free text. Implementations never panic and never return errors:
// every failure is reported through Completion.
type Gateway interface {
	Complete(ctx context.Context, prompt, purpose string) Completion
}

// Generator is the transport to a concrete model provider.
type Generator interface {
	GenerateContent(ctx context.Context, prompt, purpose string) (string, error)
	Model() string
}

type isolatedGateway struct {
	provider  string
	generator Generator
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

type GatewayOptions struct {
	Timeout      time.Duration
	MaxLogLength int
}

// NewGateway wraps a generator with a bounded timeout and error isolation.
func NewGateway(provider string, generator Generator, opts GatewayOptions, log *zap.Logger) Gateway {
	if generator == nil {
		return Disabled("no ai generator configured")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	return &isolatedGateway{
		provider:  provider,
		generator: generator,
		timeout:   opts.Timeout,
		maxLogLen: opts.MaxLogLength,
		logger:    logger.WithCommonFields(log, provider, generator.Model()),
	}
}

func (g *isolatedGateway) Complete(ctx context.Context, prompt, purpose string) (result Completion) {
	started := time.Now()
	outcome := metrics.OutcomeError

	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomePanic
			result = failed("ai generator panicked: %v", r)
		}

		metrics.GatewayRequests.WithLabelValues(g.provider, outcome).Inc()
		metrics.GatewayDuration.WithLabelValues(g.provider).Observe(time.Since(started).Seconds())

		if !result.Success {
			g.logger.Warn("ai completion failed",
				zap.String("purpose", purpose),
				zap.String("outcome", outcome),
				zap.Duration("elapsed", time.Since(started)),
				zap.String("error", result.Error),
			)
		}
	}()

	if strings.TrimSpace(prompt) == "" {
		return failed("prompt must not be empty")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("ai completion request",
		zap.String("purpose", purpose),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, prompt, purpose)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
			return failed("ai request timed out after %s: %v", g.timeout, err)
		}
		return failed("ai request failed: %v", err)
	}

	if strings.TrimSpace(raw) == "" {
		return failed("ai provider returned an empty response")
	}

	g.logger.Debug("ai completion response",
		zap.String("purpose", purpose),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	outcome = metrics.OutcomeSuccess
	return Completion{Success: true, Response: raw}
}

type disabledGateway struct {
	reason string
}

// Disabled returns a gateway that always fails, for deployments without an AI provider.
func Disabled(reason string) Gateway {
	if strings.TrimSpace(reason) == "" {
		reason = "ai is disabled"
	}
	return disabledGateway{reason: reason}
}

func (d disabledGateway) Complete(context.Context, string, string) Completion {
	return Completion{Success: false, Error: d.reason}
}
