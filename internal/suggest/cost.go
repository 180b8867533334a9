package suggest

import "math"

// Rates are the provider's dollar prices per 1K tokens.
type Rates struct {
	InputPer1K  float64
	OutputPer1K float64
}

// DefaultRates are the gpt-5-nano prices. Models without an entry in
// modelRates are billed at these.
var DefaultRates = Rates{InputPer1K: 0.0000375, OutputPer1K: 0.00015}

var modelRates = map[string]Rates{
	"gpt-5-nano": DefaultRates,
}

// RatesFor returns the fixed rates for model.
func RatesFor(model string) Rates {
	if r, ok := modelRates[model]; ok {
		return r
	}
	return DefaultRates
}

// Cost returns the price of one call in whole cents, rounded down, with a
// floor of one cent per request.
func (r Rates) Cost(inputTokens, outputTokens int) int {
	dollars := float64(inputTokens)/1000*r.InputPer1K + float64(outputTokens)/1000*r.OutputPer1K
	cents := int(math.Floor(dollars * 100))
	if cents < 1 {
		return 1
	}
	return cents
}

// CalculateCost prices a call at DefaultRates.
func CalculateCost(inputTokens, outputTokens int) int {
	return DefaultRates.Cost(inputTokens, outputTokens)
}
