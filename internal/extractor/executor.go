package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entityxtract/entityxtract/internal/llm"
	"github.com/entityxtract/entityxtract/internal/message"
	"github.com/entityxtract/entityxtract/internal/metrics"
	"github.com/entityxtract/entityxtract/internal/schema"
)

const rawExcerptLimit = 800

// executor invokes the model for one entity, enforces strict JSON, and
// retries transient failures with exponential backoff.
type executor struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// envelope is the response contract the system prompt imposes on the model.
type envelope struct {
	Found  *bool           `json:"found"`
	Reason string          `json:"reason"`
	Value  json.RawMessage `json:"value"`
	Rows   json.RawMessage `json:"rows"`
}

// extractOne runs the per-entity invocation protocol. It never returns an
// error: every outcome, including exhausted retries, is a Result.
func (x *executor) extractOne(ctx context.Context, ent schema.Entity, msgs []message.Message) Result {
	rid := uuid.New().String()
	base := ent.Base()
	res := Result{Entity: base.Name, Shape: ent.Shape()}

	x.logger.Info("extract.entity.start",
		"req_id", rid,
		"entity", base.Name,
		"shape", ent.Shape(),
		"required", base.Required,
		"max_retries", x.cfg.MaxRetries,
	)

	var lastMsg string
	for attempt := 1; attempt <= x.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			metrics.Retries.Inc()
			if err := x.backoff(ctx, attempt-1); err != nil {
				lastMsg = err.Error()
				break
			}
		}
		res.Attempts = attempt

		resp, err := x.provider.Complete(ctx, llm.Request{
			Model:       x.cfg.Model,
			Temperature: x.cfg.Temperature,
			Messages:    msgs,
			ForceJSON:   true,
		})
		if err != nil {
			if llm.Retryable(err) {
				metrics.ModelCalls.WithLabelValues("retryable_error").Inc()
				lastMsg = err.Error()
				x.logger.Warn("extract.entity.transient",
					"req_id", rid, "entity", base.Name, "attempt", attempt, "error", err)
				continue
			}
			metrics.ModelCalls.WithLabelValues("fatal_error").Inc()
			x.logger.Error("extract.entity.provider_error",
				"req_id", rid, "entity", base.Name, "attempt", attempt, "error", err)
			res.Message = err.Error()
			metrics.EntityResults.WithLabelValues("failed").Inc()
			return res
		}
		metrics.ModelCalls.WithLabelValues("ok").Inc()

		// Keep the latest reported usage even if this attempt's payload
		// turns out unusable; exhausted results still carry known tokens.
		if resp.Usage.InputTokens != nil {
			res.InputTokens = resp.Usage.InputTokens
			metrics.Tokens.WithLabelValues("input").Add(float64(*resp.Usage.InputTokens))
		}
		if resp.Usage.OutputTokens != nil {
			res.OutputTokens = resp.Usage.OutputTokens
			metrics.Tokens.WithLabelValues("output").Add(float64(*resp.Usage.OutputTokens))
		}
		res.Raw = excerpt(resp.Content)

		data, outcome, msg := x.interpret(ent, resp.Content)
		switch outcome {
		case outcomeOK:
			res.Success = true
			res.Data = data
			x.logger.Info("extract.entity.ok",
				"req_id", rid, "entity", base.Name, "attempt", attempt)
			metrics.EntityResults.WithLabelValues("success").Inc()
			return res
		case outcomeNotFound:
			// Explicit absence is never retried; required decides success.
			metrics.EntityResults.WithLabelValues("not_found").Inc()
			if base.Required {
				res.Message = "required entity not found: " + msg
				x.logger.Warn("extract.entity.required_missing",
					"req_id", rid, "entity", base.Name, "reason", msg)
				return res
			}
			res.Success = true
			res.Data = nil
			res.Message = "entity not found: " + msg
			x.logger.Info("extract.entity.optional_missing",
				"req_id", rid, "entity", base.Name, "reason", msg)
			return res
		case outcomeRetry:
			lastMsg = msg
			x.logger.Warn("extract.entity.bad_response",
				"req_id", rid, "entity", base.Name, "attempt", attempt, "error", msg)
		}
	}

	res.Message = fmt.Sprintf("exhausted %d attempts: %s", x.cfg.MaxRetries, lastMsg)
	x.logger.Error("extract.entity.exhausted",
		"req_id", rid, "entity", base.Name, "attempts", res.Attempts, "last_error", lastMsg)
	metrics.EntityResults.WithLabelValues("failed").Inc()
	return res
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeNotFound
	outcomeRetry
)

// interpret parses and shape-checks one model response. Malformed JSON and
// payloads that miss the entity's declared shape are retryable; only an
// explicit {"found": false} is terminal.
func (x *executor) interpret(ent schema.Entity, content string) (any, outcome, string) {
	cleaned := stripFences(content)

	var env envelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, outcomeRetry, fmt.Sprintf("response is not valid JSON: %v", err)
	}

	if env.Found != nil && !*env.Found {
		reason := env.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return nil, outcomeNotFound, reason
	}

	payload := env.Value
	if ent.Shape() == schema.ShapeTable {
		payload = env.Rows
		// Lenient: some models put the row array under "value" anyway.
		if len(payload) == 0 {
			payload = env.Value
		}
	}
	if len(payload) == 0 || string(payload) == "null" {
		return nil, outcomeRetry, "response carries no payload for the entity"
	}

	if err := schema.ValidateJSON(ent.PayloadSchema(), payload); err != nil {
		return nil, outcomeRetry, fmt.Sprintf("payload has wrong shape: %v", err)
	}

	data, err := decodePayload(ent.Shape(), payload)
	if err != nil {
		return nil, outcomeRetry, err.Error()
	}
	return data, outcomeOK, ""
}

func decodePayload(shape schema.Shape, payload json.RawMessage) (any, error) {
	switch shape {
	case schema.ShapeTable:
		var rows []map[string]any
		if err := json.Unmarshal(payload, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		return rows, nil
	case schema.ShapeObject:
		var obj map[string]any
		if err := json.Unmarshal(payload, &obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		return obj, nil
	default:
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("decode value: %w", err)
		}
		return v, nil
	}
}

// backoff sleeps base*factor^(k-1) before attempt k+1, honoring ctx.
func (x *executor) backoff(ctx context.Context, k int) error {
	delay := x.cfg.BackoffBase
	for i := 1; i < k; i++ {
		delay = time.Duration(float64(delay) * x.cfg.BackoffFactor)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// stripFences defensively removes a residual markdown code-fence wrapper.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func excerpt(s string) string {
	if len(s) <= rawExcerptLimit {
		return s
	}
	return s[:rawExcerptLimit] + "...(truncated)"
}
