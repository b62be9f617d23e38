// Package openai implements the llm.Provider capability against any
// OpenAI-compatible chat-completions endpoint.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entityxtract/entityxtract/internal/llm"
	"github.com/entityxtract/entityxtract/internal/message"
)

// Complete sends one multimodal chat-completions request and returns the
// model's text plus usage metadata when the provider reports it.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	body := map[string]any{
		"model":       model,
		"temperature": req.Temperature,
		"messages":    buildMessages(req.Messages),
	}
	if req.ForceJSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"model", model,
		"temp", req.Temperature,
		"messages", len(req.Messages),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, classify(status, raw, err)
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return llm.Response{}, &llm.ProviderError{
			Status:    status,
			Body:      fmt.Sprintf("decode response: %v", err),
			Retryable: true,
		}
	}
	if len(cc.Choices) == 0 {
		return llm.Response{}, &llm.ProviderError{
			Status:    status,
			Body:      "no choices in response",
			Retryable: true,
		}
	}

	resp := llm.Response{
		Content: strings.TrimSpace(cc.Choices[0].Message.Content),
		Model:   cc.Model,
	}
	if cc.Usage != nil {
		in, out := cc.Usage.PromptTokens, cc.Usage.CompletionTokens
		resp.Usage = llm.Usage{InputTokens: &in, OutputTokens: &out}
	}

	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"content_bytes", len(resp.Content),
		"has_usage", cc.Usage != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// classify turns a transport failure into a ProviderError with retryability:
// rate limits and server errors retry, other client errors do not, and a
// request that never completed (status 0) is a network-level transient.
func classify(status int, raw []byte, err error) error {
	if status == 0 {
		// The request never completed: timeout, DNS, connection reset.
		return &llm.ProviderError{Status: 0, Body: err.Error(), Retryable: true}
	}
	return &llm.ProviderError{
		Status:    status,
		Body:      truncate(string(raw), 2<<10),
		Retryable: status == 429 || status >= 500,
	}
}

func buildMessages(msgs []message.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		// Plain-text-only messages use the simple string content form.
		if len(m.Parts) == 1 && m.Parts[0].Type == message.PartText {
			out = append(out, map[string]any{"role": m.Role, "content": m.Parts[0].Text})
			continue
		}
		parts := make([]map[string]any, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case message.PartText:
				parts = append(parts, map[string]any{"type": "text", "text": p.Text})
			case message.PartImage:
				parts = append(parts, map[string]any{
					"type":      "image_url",
					"image_url": map[string]any{"url": dataURL(p.MIME, p.Data)},
				})
			case message.PartFile:
				parts = append(parts, map[string]any{
					"type": "file",
					"file": map[string]any{
						"filename":  p.FileName,
						"file_data": dataURL(p.MIME, p.Data),
					},
				})
			}
		}
		out = append(out, map[string]any{"role": m.Role, "content": parts})
	}
	return out
}

func dataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
