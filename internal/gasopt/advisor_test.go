package gasopt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayalabs/ayabridge/internal/inference"
)

type fixedGas struct{ price float64 }

func (f *fixedGas) GasPrice(ctx context.Context, chain string) float64 { return f.price }

type fixedProvider struct {
	result inference.Result
	err    error
	last   inference.Request
}

func (f *fixedProvider) Infer(ctx context.Context, req inference.Request) (inference.Result, error) {
	f.last = req
	return f.result, f.err
}

func TestAdviseUsesModelPrediction(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	optimalAt := now.Add(10 * time.Minute).UnixMilli()
	p := &fixedProvider{result: inference.Result{
		Gas: &inference.GasPrediction{
			OptimalGasPrice: 20,
			OptimalTime:     optimalAt,
			Savings:         99, // ignored, savings come from the prices
			Confidence:      0.89,
		},
	}}
	a := NewAdvisor(&fixedGas{price: 25}, p, func() time.Time { return now })

	got := a.Advise(context.Background(), "ethereum", "bridge")
	assert.Equal(t, "ethereum", got.Chain)
	assert.Equal(t, "25 gwei", got.CurrentGasPrice)
	assert.Equal(t, "20 gwei", got.PredictedOptimal.GasPrice)
	assert.Equal(t, optimalAt, got.PredictedOptimal.Time)
	assert.Equal(t, "20.0%", got.PredictedOptimal.Savings)
	assert.Equal(t, "decreasing", got.Trend)
	assert.InDelta(t, 0.89, got.MLInsights.Confidence, 1e-9)
	assert.False(t, got.FallbackUsed)

	require.Equal(t, inference.ModelGasPredictor, p.last.Model)
	assert.Equal(t, 14, p.last.Input.TimeOfDay)
	assert.Equal(t, int(time.Monday), p.last.Input.DayOfWeek)
	assert.InDelta(t, 25, p.last.Input.CurrentGasPrice, 1e-9)
}

func TestAdviseFallbackPrediction(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := NewAdvisor(&fixedGas{price: 40}, &fixedProvider{err: errors.New("model offline")}, func() time.Time { return now })

	got := a.Advise(context.Background(), "polygon", "")
	assert.Equal(t, "38 gwei", got.PredictedOptimal.GasPrice) // 40 * 0.95
	assert.Equal(t, now.Add(5*time.Minute).UnixMilli(), got.PredictedOptimal.Time)
	assert.Equal(t, "5.0%", got.PredictedOptimal.Savings)
	assert.InDelta(t, 0.87, got.MLInsights.Confidence, 1e-9)
	assert.True(t, got.FallbackUsed)
}

func TestSavingsNeverNegative(t *testing.T) {
	assert.Zero(t, savingsPercent(25, 30))
	assert.Zero(t, savingsPercent(0, 10))
	assert.InDelta(t, 50, savingsPercent(20, 10), 1e-9)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, "decreasing", trendFor(25, 20))
	assert.Equal(t, "increasing", trendFor(25, 30))
	assert.Equal(t, "stable", trendFor(25, 25.1))
}
