package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func TestSlotLabels(t *testing.T) {
	assert.Len(t, SlotLabels, SlotCount)
	assert.Equal(t, "9:00 AM - 10:00 AM", SlotLabels[0])
	assert.Equal(t, "11:00 AM - 12:00 PM", SlotLabels[2])
	assert.Equal(t, "12:00 PM - 1:00 PM", SlotLabels[3])
	assert.Equal(t, "4:00 PM - 5:00 PM", SlotLabels[7])
}

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, DayIndex(models.Monday))
	assert.Equal(t, 4, DayIndex(models.Friday))
	assert.Equal(t, -1, DayIndex("Saturday"))
	assert.False(t, ValidDay(""))
}

func TestSlotsOverlap(t *testing.T) {
	cases := []struct {
		name             string
		startA, durA     int
		startB, durB     int
		expectedOverlaps bool
	}{
		{"same slot", 2, 1, 2, 1, true},
		{"adjacent", 2, 1, 3, 1, false},
		{"lab covers next", 2, 2, 3, 1, true},
		{"lab ends before", 0, 2, 2, 2, false},
		{"contained", 1, 4, 2, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedOverlaps, SlotsOverlap(tc.startA, tc.durA, tc.startB, tc.durB))
			assert.Equal(t, tc.expectedOverlaps, SlotsOverlap(tc.startB, tc.durB, tc.startA, tc.durA))
		})
	}
}

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(7, 1))
	assert.True(t, InBounds(6, 2))
	assert.False(t, InBounds(7, 2))
	assert.False(t, InBounds(-1, 1))
}

func TestEntryOccupiesLunch(t *testing.T) {
	lab := models.Entry{Day: models.Monday, SlotIndex: 2, Duration: 2}
	assert.True(t, EntryOccupiesLunch(lab, 3))
	assert.False(t, EntryOccupiesLunch(lab, 4))
	assert.False(t, EntryOccupiesLunch(models.Entry{SlotIndex: 4, Duration: 1}, 3))
}

func TestDayGapCount(t *testing.T) {
	at := func(day models.Weekday, slot, dur int) models.Entry {
		return models.Entry{Day: day, SlotIndex: slot, Duration: dur}
	}

	assert.Equal(t, 0, dayGapCount(nil, models.Monday, 3))
	assert.Equal(t, 0, dayGapCount([]models.Entry{at(models.Monday, 5, 1)}, models.Monday, 3))
	assert.Equal(t, 1, dayGapCount([]models.Entry{at(models.Monday, 0, 1), at(models.Monday, 2, 1)}, models.Monday, 3))
	assert.Equal(t, 1, dayGapCount([]models.Entry{at(models.Monday, 2, 1), at(models.Monday, 4, 1)}, models.Monday, 3), "lunch inside the span is a gap")
	assert.Equal(t, 2, dayGapCount([]models.Entry{at(models.Monday, 1, 1), at(models.Monday, 4, 1)}, models.Monday, 3))
	assert.Equal(t, 0, dayGapCount([]models.Entry{at(models.Monday, 0, 2), at(models.Monday, 2, 1)}, models.Monday, 3))
	assert.Equal(t, 2, dayGapCount([]models.Entry{at(models.Tuesday, 4, 1), at(models.Tuesday, 7, 1)}, models.Tuesday, 3))
	assert.Equal(t, 0, dayGapCount([]models.Entry{at(models.Tuesday, 4, 1), at(models.Tuesday, 7, 1)}, models.Monday, 3))
}
