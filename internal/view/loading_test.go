package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLoading(t *testing.T) {
	idle := LoadingState{}
	busy := NextLoading(idle, true)
	assert.True(t, busy.Loading)

	assert.Equal(t, busy, NextLoading(busy, true), "enabling twice keeps one indicator")
	assert.Equal(t, idle, NextLoading(idle, false), "disabling an idle control is a no-op")
	assert.Equal(t, idle, NextLoading(busy, false))
}

func TestSetLoading_TogglesIndicatorAndDisabled(t *testing.T) {
	c := NewControl(FetchDates, "Fetch dates")
	assert.False(t, c.Indicator())
	assert.False(t, c.Disabled())

	SetLoading(c, true)
	SetLoading(c, true)
	assert.True(t, c.Indicator())
	assert.True(t, c.Disabled())
	assert.Equal(t, "fetchDatesLoading", c.IndicatorID())

	SetLoading(c, false)
	assert.False(t, c.Indicator())
	assert.False(t, c.Disabled())

	SetLoading(c, false)
	assert.False(t, c.Indicator())
}
