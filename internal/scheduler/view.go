package scheduler

import (
	"sort"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// GridKey addresses one cell of the weekly grid.
type GridKey struct {
	Day  models.Weekday
	Slot int
}

// GridCell is an occupied cell; continuation cells belong to a multi-slot block
// that started in an earlier slot.
type GridCell struct {
	Entry          models.Entry
	IsHead         bool
	IsContinuation bool
}

// BuildGrid indexes entries by every cell they occupy.
func BuildGrid(entries []models.Entry) map[GridKey]GridCell {
	grid := make(map[GridKey]GridCell, len(entries))
	for _, entry := range entries {
		for i := 0; i < entry.Span(); i++ {
			grid[GridKey{Day: entry.Day, Slot: entry.SlotIndex + i}] = GridCell{
				Entry:          entry,
				IsHead:         i == 0,
				IsContinuation: i > 0,
			}
		}
	}
	return grid
}

// TeacherSchedule collects every session of teacherName across all timetables,
// ordered by day then slot.
func TeacherSchedule(all []models.Timetable, teacherName string) []models.TeacherScheduleRow {
	var rows []models.TeacherScheduleRow
	for _, tt := range all {
		for _, entry := range tt.Entries {
			if !SameTeacher(entry.TeacherName, teacherName) {
				continue
			}
			rows = append(rows, models.TeacherScheduleRow{
				ID:          tt.ID + "_" + entry.BlockID,
				TimetableID: tt.ID,
				Department:  tt.Department,
				CollegeYear: tt.CollegeYear,
				Semester:    tt.Semester,
				Division:    tt.Division,
				Day:         entry.Day,
				SlotIndex:   entry.SlotIndex,
				Duration:    entry.Span(),
				SubjectName: entry.SubjectName,
				Type:        entry.Type,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := DayIndex(rows[i].Day), DayIndex(rows[j].Day)
		if di != dj {
			return di < dj
		}
		return rows[i].SlotIndex < rows[j].SlotIndex
	})
	return rows
}

// ScheduleEntries turns teacher schedule rows back into grid entries.
func ScheduleEntries(rows []models.TeacherScheduleRow, teacherName string) []models.Entry {
	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.Entry{
			BlockID:     row.ID,
			SubjectName: row.SubjectName,
			TeacherName: teacherName,
			Type:        row.Type,
			Duration:    row.Duration,
			Color:       ColorForLecture(row.SubjectName, row.Type, teacherName),
			Day:         row.Day,
			SlotIndex:   row.SlotIndex,
		})
	}
	return entries
}
