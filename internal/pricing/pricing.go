// Package pricing converts token counts into a monetary cost via a model
// pricing lookup. Unknown models or unknown token counts yield no cost —
// never a fabricated zero, which would be indistinguishable from a genuinely
// free call.
package pricing

// Estimator is the pricing collaborator.
type Estimator interface {
	// Estimate returns the USD cost for a call, or ok=false when pricing is
	// unavailable for the model.
	Estimate(model string, inputTokens, outputTokens int) (float64, bool)
}

// ModelPrice is the per-million-token price pair for one model.
type ModelPrice struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Table is a static in-process pricing lookup.
type Table map[string]ModelPrice

func (t Table) Estimate(model string, inputTokens, outputTokens int) (float64, bool) {
	price, ok := t[model]
	if !ok {
		return 0, false
	}
	cost := float64(inputTokens)/1e6*price.InputPerMTok + float64(outputTokens)/1e6*price.OutputPerMTok
	return cost, true
}

// DefaultTable holds prices for commonly used models. Callers with other
// models supply their own Estimator.
func DefaultTable() Table {
	return Table{
		"gpt-4o":       {InputPerMTok: 2.50, OutputPerMTok: 10.00},
		"gpt-4o-mini":  {InputPerMTok: 0.15, OutputPerMTok: 0.60},
		"gpt-4.1":      {InputPerMTok: 2.00, OutputPerMTok: 8.00},
		"gpt-4.1-mini": {InputPerMTok: 0.40, OutputPerMTok: 1.60},
		"gpt-4.1-nano": {InputPerMTok: 0.10, OutputPerMTok: 0.40},
	}
}
