package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func regenerateFixture() models.Timetable {
	adhoc := entryAt("adhoc", "Guest Lecture", "TeacherZ", models.EntryTypeSubject, models.Wednesday, 5)
	adhoc.Color = "hsl(200, 74%, 84%)"
	return models.Timetable{
		ID:             "t1",
		Department:     "Computer",
		CollegeYear:    1,
		Semester:       2,
		Division:       "A",
		LunchSlotIndex: 3,
		Constraints: []models.Requirement{
			{ID: "c1", SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, FrequencyPerWeek: 3},
		},
		Entries: []models.Entry{
			entryAt("m1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0),
			entryAt("m2", "Math", "TeacherA", models.EntryTypeSubject, models.Tuesday, 0),
			entryAt("m3", "Math", "teachera ", models.EntryTypeSubject, models.Wednesday, 0),
			adhoc,
		},
		DeletedEntries: []models.Entry{
			{BlockID: "gone", SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, Duration: 1},
		},
		AddedEntries: []models.PoolTemplate{
			{BlockID: "p1", SubjectName: "Workshop", TeacherName: "TeacherY", Type: models.EntryTypeSubject, Duration: 1, FrequencyPerWeek: 2},
		},
	}
}

func TestRegeneratePreservesFixedEntries(t *testing.T) {
	tt := regenerateFixture()
	original := tt.Clone()

	result, err := Regenerate(tt, []models.Timetable{tt}, RegenerateOptions{Seed: 7, NewBlockID: sequentialIDs("r")})
	require.NoError(t, err)

	assert.Equal(t, original, tt, "input must not be mutated")
	assert.Equal(t, 1, result.Fixed)
	assert.Equal(t, 5, result.Solve.Requested)
	assert.Equal(t, 5, result.Solve.Placed)
	assert.False(t, result.Solve.Partial())

	out := result.Timetable
	require.Len(t, out.Entries, 6)
	assert.Equal(t, original.Entries[3], out.Entries[0])
	assert.Empty(t, out.DeletedEntries)
	assert.Equal(t, original.AddedEntries, out.AddedEntries)

	counts := map[string]int{}
	for _, entry := range out.Entries {
		counts[entry.SubjectName]++
	}
	assert.Equal(t, map[string]int{"Guest Lecture": 1, "Math": 3, "Workshop": 2}, counts)
	requireNoDoubleBooking(t, out)
}

func TestRegenerateReportsShortfall(t *testing.T) {
	tt := regenerateFixture()
	tt.Constraints[0].FrequencyPerWeek = 40

	result, err := Regenerate(tt, nil, RegenerateOptions{Seed: 3, Attempts: 2})
	require.NoError(t, err)
	assert.True(t, result.Solve.Partial())
	assert.Equal(t, 42, result.Solve.Requested)
	assert.Equal(t, 34, result.Solve.Placed, "one of the 35 usable cells is held by the fixed entry")
	require.NotEmpty(t, result.Solve.Shortfalls)
}

func TestRegenerateAvoidsOtherTimetables(t *testing.T) {
	tt := regenerateFixture()
	other := models.Timetable{ID: "t2", Department: "Civil", Division: "B"}
	for _, day := range []models.Weekday{models.Monday, models.Tuesday} {
		for slot := 0; slot < SlotCount; slot++ {
			other.Entries = append(other.Entries, entryAt("", "Survey", "TeacherA", models.EntryTypeSubject, day, slot))
		}
	}

	result, err := Regenerate(tt, []models.Timetable{other, tt}, RegenerateOptions{Seed: 21})
	require.NoError(t, err)
	for _, entry := range result.Timetable.Entries {
		if entry.SubjectName == "Math" {
			assert.NotContains(t, []models.Weekday{models.Monday, models.Tuesday}, entry.Day)
		}
	}
	requireNoTeacherCollision(t, []models.Timetable{other, result.Timetable})
}

func TestRegenerateRejectsInvalidConstraints(t *testing.T) {
	tt := regenerateFixture()
	tt.Constraints[0].TeacherName = ""

	_, err := Regenerate(tt, nil, RegenerateOptions{Seed: 1})
	var reqErr *RequirementError
	assert.ErrorAs(t, err, &reqErr)
}

func TestFixedEntriesUsesLectureKey(t *testing.T) {
	tt := regenerateFixture()
	fixed := FixedEntries(tt.Entries, CombinedRequirements(tt))
	require.Len(t, fixed, 1)
	assert.Equal(t, "adhoc", fixed[0].BlockID)
}
