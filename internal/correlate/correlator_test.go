package correlate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-sec/argus/internal/models"
)

func TestCorrelator_EmptyInput(t *testing.T) {
	c := New(5 * time.Minute)

	report, err := c.Correlate(nil)
	require.NoError(t, err)

	assert.NotNil(t, report.Groups)
	assert.Empty(t, report.Groups)
	assert.NotNil(t, report.AttackChains)
	assert.Empty(t, report.AttackChains)
	assert.Equal(t, models.RiskLow, report.Risk)
	assert.NotNil(t, report.Recommendations)
	assert.Empty(t, report.Recommendations)
	assert.NotNil(t, report.MitigationPlan)
}

func TestCorrelator_MalformedInputFailsWhole(t *testing.T) {
	c := New(5 * time.Minute)
	base := time.Now()

	events := []models.FlaggedEvent{
		{CorrelationID: "a", Identity: "1.2.3.4", Timestamp: base},
		{CorrelationID: "b", Identity: "1.2.3.4"}, // missing timestamp
	}
	report, err := c.Correlate(events)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Nil(t, report)
}

func TestCorrelator_GroupsByIdentityWithinWindow(t *testing.T) {
	c := New(5 * time.Minute)
	base := time.Now()

	events := []models.FlaggedEvent{
		{CorrelationID: "a", Identity: "1.2.3.4", Score: 0.5, Timestamp: base},
		{CorrelationID: "b", Identity: "1.2.3.4", Score: 0.6, Timestamp: base.Add(time.Minute)},
		{CorrelationID: "c", Identity: "5.6.7.8", Score: 0.3, Timestamp: base.Add(2 * time.Minute)},
		// Outside the window from "a": starts a fresh group for 1.2.3.4.
		{CorrelationID: "d", Identity: "1.2.3.4", Score: 0.2, Timestamp: base.Add(10 * time.Minute)},
	}

	report, err := c.Correlate(events)
	require.NoError(t, err)
	require.Len(t, report.Groups, 3)

	first := report.Groups[0]
	assert.Equal(t, "1.2.3.4", first.Identity)
	require.Len(t, first.Events, 2)
	assert.Equal(t, "a", first.Events[0].CorrelationID)
	assert.Equal(t, "b", first.Events[1].CorrelationID)
	assert.Equal(t, base, first.WindowStart)
	assert.Equal(t, base.Add(time.Minute), first.WindowEnd)

	assert.Equal(t, "5.6.7.8", report.Groups[1].Identity)
	assert.Equal(t, "1.2.3.4", report.Groups[2].Identity)
	assert.Len(t, report.Groups[2].Events, 1)
}

func TestCorrelator_StableTiebreakOnEqualTimestamps(t *testing.T) {
	c := New(5 * time.Minute)
	ts := time.Now()

	events := []models.FlaggedEvent{
		{CorrelationID: "z", Identity: "1.2.3.4", Timestamp: ts},
		{CorrelationID: "a", Identity: "1.2.3.4", Timestamp: ts},
		{CorrelationID: "m", Identity: "1.2.3.4", Timestamp: ts},
	}

	report, err := c.Correlate(events)
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	require.Len(t, report.AttackChains, 1)
	assert.Equal(t, []string{"a", "m", "z"}, report.AttackChains[0])
}

func TestCorrelator_RiskLevels(t *testing.T) {
	c := New(5 * time.Minute)
	base := time.Now()

	// Single high-score event escalates the report risk.
	report, err := c.Correlate([]models.FlaggedEvent{
		{CorrelationID: "a", Identity: "x", Score: 0.95, Timestamp: base},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskCritical, report.Risk)
	assert.NotEmpty(t, report.MitigationPlan)

	report, err = c.Correlate([]models.FlaggedEvent{
		{CorrelationID: "a", Identity: "x", Score: 0.75, Timestamp: base},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, report.Risk)

	report, err = c.Correlate([]models.FlaggedEvent{
		{CorrelationID: "a", Identity: "x", Score: 0.1, Timestamp: base},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, report.Risk)
}

func TestCorrelator_BurstEscalatesByCount(t *testing.T) {
	c := New(5 * time.Minute)
	base := time.Now()

	var events []models.FlaggedEvent
	for i := 0; i < 5; i++ {
		events = append(events, models.FlaggedEvent{
			CorrelationID: string(rune('a' + i)),
			Identity:      "1.2.3.4",
			Score:         0.2,
			Timestamp:     base.Add(time.Duration(i) * time.Second),
		})
	}

	report, err := c.Correlate(events)
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, models.RiskCritical, report.Groups[0].Risk)
}
