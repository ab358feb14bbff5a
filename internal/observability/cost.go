package observability

import (
	"strconv"

	"github.com/openai/openai-go/responses"
)

// Pricing constants for the vision-capable models used for text recognition
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// GPT-4o pricing
	gpt4oInputPrice  = 0.0025
	gpt4oOutputPrice = 0.01

	// GPT-4o-mini pricing
	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006

	// GPT-4.1-mini pricing
	gpt41MiniInputPrice  = 0.0004
	gpt41MiniOutputPrice = 0.0016
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for all models
var PricingTable = map[string]ModelPricing{
	"gpt-4o": {
		InputPricePer1K:  gpt4oInputPrice,
		OutputPricePer1K: gpt4oOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
	"gpt-4.1-mini": {
		InputPricePer1K:  gpt41MiniInputPrice,
		OutputPricePer1K: gpt41MiniOutputPrice,
	},
}

// CalculateOpenAICost returns the USD cost of one recognition call
func CalculateOpenAICost(model string, usage responses.ResponseUsage) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		// unknown models are priced like gpt-4o, the most expensive entry
		pricing = PricingTable["gpt-4o"]
	}
	return float64(usage.InputTokens)/tokensPerKilo*pricing.InputPricePer1K +
		float64(usage.OutputTokens)/tokensPerKilo*pricing.OutputPricePer1K
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
