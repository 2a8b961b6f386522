package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolvePricing(t *testing.T) {
	assert.Equal(t, Pricing{InputPerM: 0.30, OutputPerM: 2.50}, ResolvePricing("gemini-2.5-flash"))
	assert.Equal(t, Pricing{InputPerM: 0.30, OutputPerM: 2.50}, ResolvePricing("models/Gemini-2.5-Flash"))
	assert.Equal(t, Pricing{}, ResolvePricing("unknown-model"))
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000}, Pricing{InputPerM: 0.30, OutputPerM: 2.50})
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 1.25, out, 1e-9)
	assert.InDelta(t, 1.55, total, 1e-9)

	in, out, total = ComputeCost(nil, Pricing{InputPerM: 1})
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.Zero(t, total)
}
