package extractor

import (
	"fmt"

	"github.com/entityxtract/entityxtract/internal/schema"
)

// Result is the outcome of one entity's extraction. Token counts and cost
// are pointers: nil means unknown, which is distinct from zero and excluded
// from job totals.
type Result struct {
	Entity  string       `json:"entity"`
	Shape   schema.Shape `json:"shape"`
	Success bool         `json:"success"`
	// Data matches the entity's shape on success: a scalar for scalars,
	// []map[string]any for tables, map[string]any for objects. An optional
	// entity the model reported absent succeeds with nil Data.
	Data         any      `json:"data"`
	Message      string   `json:"message,omitempty"`
	InputTokens  *int     `json:"input_tokens,omitempty"`
	OutputTokens *int     `json:"output_tokens,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
	// Raw is an excerpt of the model's final response, kept for audit.
	Raw      string `json:"raw,omitempty"`
	Attempts int    `json:"attempts"`
}

// Results is the job-level result set: one Result per entity, keyed by
// entity name, with totals over the entities whose usage is known.
type Results struct {
	Results map[string]Result `json:"results"`
	// Order preserves the original schema order for sequenced output.
	Order             []string `json:"order"`
	Success           bool     `json:"success"`
	Message           string   `json:"message,omitempty"`
	TotalInputTokens  *int     `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int     `json:"total_output_tokens,omitempty"`
	TotalCost         *float64 `json:"total_cost,omitempty"`
}

// InOrder returns the per-entity results in original schema order.
func (r Results) InOrder() []Result {
	out := make([]Result, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, r.Results[name])
	}
	return out
}

// aggregate merges per-entity results into the job-level set. Totals sum
// only entries with known counts; unknown entries are excluded, not zeroed.
func aggregate(order []string, perEntity []Result) Results {
	out := Results{
		Results: make(map[string]Result, len(perEntity)),
		Order:   order,
		Success: true,
	}

	var inTotal, outTotal int
	var costTotal float64
	var haveIn, haveOut, haveCost bool
	failed := 0

	for _, res := range perEntity {
		out.Results[res.Entity] = res
		if !res.Success {
			out.Success = false
			failed++
		}
		if res.InputTokens != nil {
			inTotal += *res.InputTokens
			haveIn = true
		}
		if res.OutputTokens != nil {
			outTotal += *res.OutputTokens
			haveOut = true
		}
		if res.Cost != nil {
			costTotal += *res.Cost
			haveCost = true
		}
	}

	if haveIn {
		out.TotalInputTokens = &inTotal
	}
	if haveOut {
		out.TotalOutputTokens = &outTotal
	}
	if haveCost {
		out.TotalCost = &costTotal
	}
	if failed > 0 {
		out.Message = fmt.Sprintf("%d of %d entities failed", failed, len(perEntity))
	}
	return out
}
