// Package generator runs one excuse generation: validate the request,
// compile the prompt, call the completion provider and normalize its reply.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
	"github.com/MikeSquared-Agency/alibi/internal/groq"
	"github.com/MikeSquared-Agency/alibi/internal/prompt"
)

// Sampling parameters sent with every completion.
const (
	Temperature = 0.9
	MaxTokens   = 2000
	TopP        = 1.0
)

const defaultAnalyticsTimeout = 5 * time.Second

// Completer is the completion provider.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []groq.Message, opts groq.Options) (string, error)
}

// Recorder receives analytics for each successful generation. Its methods
// must not fail the caller; they are run detached from the request.
type Recorder interface {
	RecordGeneration(ctx context.Context, req excuse.Request, generationID string, meta excuse.ClientMeta)
	IncrementScenarioPopularity(ctx context.Context, scenario excuse.Scenario)
}

// Result is a successful generation.
type Result struct {
	Excuses      []excuse.Variant `json:"excuses"`
	GenerationID string           `json:"generationId"`
}

type Options struct {
	// Timeout bounds the provider call. Zero means no per-call bound
	// beyond the provider client's own.
	Timeout time.Duration
	// AnalyticsTimeout bounds each detached analytics task.
	AnalyticsTimeout time.Duration
}

type Gateway struct {
	llm      Completer
	recorder Recorder
	logger   *slog.Logger
	opts     Options
	newID    func() string

	tasks sync.WaitGroup
}

// New creates a gateway. recorder may be nil to disable analytics.
func New(llm Completer, recorder Recorder, logger *slog.Logger, opts Options) *Gateway {
	if opts.AnalyticsTimeout <= 0 {
		opts.AnalyticsTimeout = defaultAnalyticsTimeout
	}
	return &Gateway{
		llm:      llm,
		recorder: recorder,
		logger:   logger,
		opts:     opts,
		newID:    NewGenerationID,
	}
}

// GenerateJSON decodes a JSON request body and generates from it.
func (g *Gateway) GenerateJSON(ctx context.Context, body []byte, meta excuse.ClientMeta) (*Result, error) {
	req, err := excuse.DecodeRequest(body)
	if err != nil {
		return nil, invalidRequest(err)
	}
	return g.generate(ctx, req, meta)
}

// Generate validates raw and generates excuses for it. Failures are *Error.
func (g *Gateway) Generate(ctx context.Context, raw map[string]any, meta excuse.ClientMeta) (*Result, error) {
	req, err := excuse.Validate(raw)
	if err != nil {
		return nil, invalidRequest(err)
	}
	return g.generate(ctx, req, meta)
}

func (g *Gateway) generate(ctx context.Context, req excuse.Request, meta excuse.ClientMeta) (*Result, error) {
	if g.llm == nil || !g.llm.Configured() {
		g.logger.Error("completion provider not configured")
		return nil, misconfigured()
	}

	p := prompt.Compile(req)

	callCtx := ctx
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := g.llm.Complete(callCtx, []groq.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}, groq.Options{Temperature: Temperature, MaxTokens: MaxTokens, TopP: TopP})
	if err != nil {
		gerr := g.providerFailure(err)
		g.logger.Error("completion failed",
			"kind", gerr.Kind,
			"status", gerr.Status,
			"reason", gerr.Reason,
			"elapsed", time.Since(started),
			"error", err,
		)
		return nil, gerr
	}

	variants, err := Normalize(text)
	if err != nil {
		g.logger.Error("failed to parse completion", "error", err, "raw", text)
		return nil, malformed(err)
	}
	if len(variants) == 0 {
		return nil, malformed(&NormalizationError{Reason: ReasonEmpty, Err: ErrNoVariants})
	}

	id := g.newID()

	g.detach(ctx, "record_generation", func(ctx context.Context) {
		g.recorder.RecordGeneration(ctx, req, id, meta)
	})
	g.detach(ctx, "increment_scenario", func(ctx context.Context) {
		g.recorder.IncrementScenarioPopularity(ctx, req.Scenario)
	})

	g.logger.Info("excuses generated",
		"generation_id", id,
		"scenario", req.Scenario,
		"believability", req.BelievabilityLevel,
		"variants", len(variants),
		"elapsed", time.Since(started),
	)

	return &Result{Excuses: variants, GenerationID: id}, nil
}

func (g *Gateway) providerFailure(err error) *Error {
	var apiErr *groq.APIError
	switch {
	case errors.As(err, &apiErr):
		details := apiErr.Message
		if details == "" {
			details = "Unknown error"
		}
		return &Error{
			Kind:    KindUpstream,
			Message: "Failed to generate excuses",
			Details: details,
			Status:  apiErr.StatusCode,
			Reason:  ReasonStatus,
			Err:     err,
		}
	case errors.Is(err, groq.ErrEmptyContent):
		return emptyResponse(err)
	case errors.Is(err, groq.ErrBadResponse):
		return &Error{
			Kind:    KindMalformedResponse,
			Message: "Failed to generate excuses",
			Details: "completion provider returned an unreadable response",
			Err:     err,
		}
	case errors.Is(err, groq.ErrNotConfigured):
		return misconfigured()
	case errors.Is(err, groq.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Error{
			Kind:    KindUpstream,
			Message: "Failed to generate excuses",
			Details: "completion provider timed out",
			Status:  http.StatusGatewayTimeout,
			Reason:  ReasonTimeout,
			Err:     err,
		}
	default:
		return &Error{
			Kind:    KindUpstream,
			Message: "Failed to generate excuses",
			Details: "completion provider unreachable",
			Status:  http.StatusBadGateway,
			Reason:  ReasonTransport,
			Err:     err,
		}
	}
}

func malformed(err error) *Error {
	e := &Error{Kind: KindMalformedResponse, Err: err}
	var nerr *NormalizationError
	if errors.As(err, &nerr) && nerr.Reason == ReasonInvalidJSON {
		e.Message = "Failed to parse generated excuses"
		e.Details = "Invalid JSON response from AI"
	} else {
		e.Message = "Invalid excuse format generated"
	}
	return e
}

// detach runs fn on its own goroutine with a context that outlives the
// request. Panics and slow sinks never reach the caller.
func (g *Gateway) detach(parent context.Context, task string, fn func(ctx context.Context)) {
	if g.recorder == nil {
		return
	}
	g.tasks.Add(1)
	go func() {
		defer g.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("analytics task panicked", "task", task, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), g.opts.AnalyticsTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until detached analytics tasks finish or ctx is done.
// Tasks still running when ctx ends are abandoned.
func (g *Gateway) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
