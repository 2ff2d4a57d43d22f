package llm

// GPT-4o pricing per 1M tokens, converted to EUR at 0.92 USD/EUR. Other
// models are billed at the same rate until per-model tables are needed.
const (
	inputEURPerMillionTokens  = 2.50 * 0.92
	outputEURPerMillionTokens = 10.0 * 0.92
)

// CostEUR derives the monetary cost of a completion from token usage.
func CostEUR(promptTokens, completionTokens int) float64 {
	input := float64(promptTokens) / 1_000_000 * inputEURPerMillionTokens
	output := float64(completionTokens) / 1_000_000 * outputEURPerMillionTokens
	return input + output
}
