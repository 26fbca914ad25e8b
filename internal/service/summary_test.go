package service

import (
	"testing"

	"NeoSync/internal/config"
	"NeoSync/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	items := []model.NeoObject{
		neo("1", "a", "2024-01-01", 0.05, 0.3),
		neo("2", "b", "2024-01-01", 0.2, 1.4),
		{ID: "3", Name: "unknown size"},
	}

	got := Summarize(items, config.DiameterFieldMax)
	assert.Equal(t, 3, got.Count)
	assert.InDelta(t, 0.3, got.Smallest, 1e-9)
	assert.InDelta(t, 1.4, got.Largest, 1e-9)

	got = Summarize(items, config.DiameterFieldMin)
	assert.InDelta(t, 0.05, got.Smallest, 1e-9)
	assert.InDelta(t, 0.2, got.Largest, 1e-9)
}

func TestSummarize_NoValues(t *testing.T) {
	got := Summarize([]model.NeoObject{{ID: "1"}, {ID: "2"}}, config.DiameterFieldMax)
	assert.Equal(t, DaySummary{Count: 2}, got)

	assert.Equal(t, DaySummary{}, Summarize(nil, config.DiameterFieldMax))
}
