// Package extractor is the extraction orchestration engine: it fans one
// executor task per entity out over a bounded worker pool, enforces the
// strict-JSON invocation protocol per entity, and joins the outcomes into a
// deterministic job-level result set.
package extractor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entityxtract/entityxtract/internal/common"
	"github.com/entityxtract/entityxtract/internal/document"
	"github.com/entityxtract/entityxtract/internal/llm"
	"github.com/entityxtract/entityxtract/internal/message"
	"github.com/entityxtract/entityxtract/internal/pricing"
	"github.com/entityxtract/entityxtract/internal/prompt"
	"github.com/entityxtract/entityxtract/internal/schema"
)

// Config holds the per-job extraction parameters. Immutable once a job runs.
type Config struct {
	Model            string
	Temperature      float32
	MaxRetries       int
	BackoffBase      time.Duration
	BackoffFactor    float64
	ParallelRequests int
	InputModes       []message.InputMode
	TrackCost        bool
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 2.0
	}
	if c.ParallelRequests <= 0 {
		c.ParallelRequests = 1
	}
	return c
}

// Job is one extraction request: a document, the ordered entities to pull
// out of it, and the shared config.
type Job struct {
	Document *document.Document
	Entities []schema.Entity
	Config   Config
}

// Engine runs extraction jobs against one provider.
type Engine struct {
	provider llm.Provider
	pricer   pricing.Estimator
	logger   *slog.Logger
}

// NewEngine builds an engine. pricer may be nil when cost tracking is off.
func NewEngine(provider llm.Provider, pricer pricing.Estimator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{provider: provider, pricer: pricer, logger: logger}
}

// task pairs one entity with its pre-composed message payload.
type task struct {
	index  int
	entity schema.Entity
	msgs   []message.Message
}

// Run executes one job and always returns a complete result set: per-entity
// failures never abort siblings. Only setup-time misconfiguration
// (duplicate names, empty mode set, unconvertible document) returns an error,
// before any model call.
func (g *Engine) Run(ctx context.Context, job Job) (Results, error) {
	jobID := uuid.New().String()
	cfg := job.Config.withDefaults()
	start := time.Now()

	if err := schema.ValidateEntities(job.Entities); err != nil {
		return Results{}, err
	}
	if len(cfg.InputModes) == 0 {
		return Results{}, common.WrapError(common.ErrInvalidConfig, "input mode set is empty")
	}

	g.logger.Info("job.run.start",
		"job_id", jobID,
		"document", job.Document.Name(),
		"kind", job.Document.Kind(),
		"entities", len(job.Entities),
		"model", cfg.Model,
		"parallel", cfg.ParallelRequests,
		"modes", cfg.InputModes,
	)

	// Compose every payload up front so UnsupportedFormat and InvalidConfig
	// surface before the first network call. The document's derivations are
	// computed once here and only read by the workers afterwards.
	system := prompt.System()
	order := make([]string, len(job.Entities))
	tasks := make([]task, len(job.Entities))
	for i, ent := range job.Entities {
		order[i] = ent.Base().Name
		entityPrompt, err := prompt.ForEntity(ent)
		if err != nil {
			return Results{}, err
		}
		msgs, err := message.Compose(ctx, job.Document, system, entityPrompt, cfg.InputModes)
		if err != nil {
			return Results{}, err
		}
		tasks[i] = task{index: i, entity: ent, msgs: msgs}
	}

	perEntity := g.fanOut(ctx, cfg, tasks)

	if cfg.TrackCost {
		for i := range perEntity {
			g.annotateCost(cfg.Model, &perEntity[i])
		}
	}

	results := aggregate(order, perEntity)
	g.logger.Info("job.run.done",
		"job_id", jobID,
		"success", results.Success,
		"entities", len(job.Entities),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// fanOut runs the executor tasks over a bounded pool of workers and waits
// for every task to settle.
func (g *Engine) fanOut(ctx context.Context, cfg Config, tasks []task) []Result {
	exec := &executor{provider: g.provider, cfg: cfg, logger: g.logger}
	results := make([]Result, len(tasks))

	workers := cfg.ParallelRequests
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers == 0 {
		return results
	}

	ch := make(chan task)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for t := range ch {
				results[t.index] = exec.extractOne(ctx, t.entity, t.msgs)
			}
		}(w + 1)
	}
	for _, t := range tasks {
		ch <- t
	}
	close(ch)
	wg.Wait()

	return results
}

// annotateCost attaches a monetary cost when pricing and usage are both
// known; lookup failure degrades to "cost unknown", never a job failure.
func (g *Engine) annotateCost(model string, res *Result) {
	if g.pricer == nil || res.InputTokens == nil || res.OutputTokens == nil {
		return
	}
	cost, ok := g.pricer.Estimate(model, *res.InputTokens, *res.OutputTokens)
	if !ok {
		g.logger.Debug("job.cost.unavailable", "entity", res.Entity, "model", model)
		return
	}
	res.Cost = &cost
}
