// Package scheduler places weekly class sessions on a fixed day x slot grid and
// enforces the no-overlap, lunch-slot and teacher-exclusivity rules. It holds no
// state of its own: every timetable it reasons about is passed in explicitly.
package scheduler

import (
	"fmt"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// SlotCount is the number of one-hour slots per day.
const SlotCount = 8

// firstSlotHour is the 24h start hour of slot 0.
const firstSlotHour = 9

// Days lists the teaching days in grid order.
var Days = []models.Weekday{
	models.Monday,
	models.Tuesday,
	models.Wednesday,
	models.Thursday,
	models.Friday,
}

// SlotLabels holds the display string of every slot, e.g. "9:00 AM - 10:00 AM".
var SlotLabels = buildSlotLabels()

func buildSlotLabels() []string {
	labels := make([]string, SlotCount)
	for i := range labels {
		hour := firstSlotHour + i
		labels[i] = fmt.Sprintf("%s - %s", formatHour12(hour), formatHour12(hour+1))
	}
	return labels
}

func formatHour12(hour24 int) string {
	period := "AM"
	if hour24 >= 12 {
		period = "PM"
	}
	hour12 := hour24 % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:00 %s", hour12, period)
}

// DayIndex returns the grid position of day or -1 when it is not a teaching day.
func DayIndex(day models.Weekday) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// ValidDay reports whether day belongs to the grid.
func ValidDay(day models.Weekday) bool {
	return DayIndex(day) >= 0
}

// SlotsOverlap reports whether [startA, startA+durA) and [startB, startB+durB) intersect.
func SlotsOverlap(startA, durA, startB, durB int) bool {
	return startA < startB+atLeastOne(durB) && startB < startA+atLeastOne(durA)
}

// InBounds reports whether a block of dur slots starting at slot fits in the day.
func InBounds(slot, dur int) bool {
	return slot >= 0 && slot+atLeastOne(dur) <= SlotCount
}

// EntryOccupiesLunch reports whether the entry's range covers the lunch slot.
func EntryOccupiesLunch(entry models.Entry, lunchSlotIndex int) bool {
	return coversSlot(entry.SlotIndex, entry.Span(), lunchSlotIndex)
}

func coversSlot(start, dur, slot int) bool {
	return slot >= start && slot < start+atLeastOne(dur)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// entriesOverlap reports whether two entries share a day and a slot.
func entriesOverlap(a models.Entry, day models.Weekday, slot, dur int) bool {
	if a.Day != day {
		return false
	}
	return SlotsOverlap(a.SlotIndex, a.Span(), slot, dur)
}

// dayGapCount is the number of empty slots inside the occupied span of a day.
// Lunch never counts as occupied, so a day straddling lunch has at least one gap.
func dayGapCount(entries []models.Entry, day models.Weekday, lunchSlotIndex int) int {
	var occupied [SlotCount]bool
	count := 0
	lo, hi := SlotCount, -1
	for _, entry := range entries {
		if entry.Day != day {
			continue
		}
		for s := entry.SlotIndex; s < entry.SlotIndex+entry.Span(); s++ {
			if s < 0 || s >= SlotCount || s == lunchSlotIndex || occupied[s] {
				continue
			}
			occupied[s] = true
			count++
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
	}
	if count <= 1 {
		return 0
	}
	return hi - lo + 1 - count
}
