package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func TestBuildGridMarksContinuations(t *testing.T) {
	grid := BuildGrid([]models.Entry{
		entryAt("lab", "Physics Lab", "TeacherB", models.EntryTypeLab, models.Monday, 4),
		entryAt("math", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0),
	})

	require.Len(t, grid, 3)
	head := grid[GridKey{Day: models.Monday, Slot: 4}]
	assert.True(t, head.IsHead)
	assert.False(t, head.IsContinuation)
	tail := grid[GridKey{Day: models.Monday, Slot: 5}]
	assert.True(t, tail.IsContinuation)
	assert.Equal(t, "lab", tail.Entry.BlockID)
	_, ok := grid[GridKey{Day: models.Monday, Slot: 1}]
	assert.False(t, ok)
}

func TestTeacherScheduleCollectsAcrossClasses(t *testing.T) {
	all := []models.Timetable{
		{
			ID: "t1", Department: "Computer", CollegeYear: 2, Semester: 3, Division: "A",
			Entries: []models.Entry{
				entryAt("a", "DBMS", "Teacher C", models.EntryTypeSubject, models.Wednesday, 1),
				entryAt("b", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0),
			},
		},
		{
			ID: "t2", Department: "IT", CollegeYear: 1, Semester: 1, Division: "B",
			Entries: []models.Entry{
				entryAt("c", "DBMS Lab", " teacher c", models.EntryTypeLab, models.Monday, 5),
				entryAt("d", "Networks", "TEACHER C", models.EntryTypeSubject, models.Monday, 1),
			},
		},
	}

	rows := TeacherSchedule(all, "teacher c")
	require.Len(t, rows, 3)
	assert.Equal(t, "t2_d", rows[0].ID)
	assert.Equal(t, "t2_c", rows[1].ID)
	assert.Equal(t, 2, rows[1].Duration)
	assert.Equal(t, "t1_a", rows[2].ID)
	assert.Equal(t, "Computer", rows[2].Department)

	entries := ScheduleEntries(rows, "Teacher C")
	require.Len(t, entries, 3)
	assert.Equal(t, models.EntryTypeLab, entries[1].Type)
	assert.Equal(t, "Teacher C", entries[1].TeacherName)

	assert.Empty(t, TeacherSchedule(all, "  "))
}
