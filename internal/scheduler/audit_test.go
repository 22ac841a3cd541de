package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func auditTimetable(id, division string, entries ...models.Entry) models.Timetable {
	return models.Timetable{
		ID:             id,
		Department:     "Computer",
		CollegeYear:    2,
		Semester:       3,
		Division:       division,
		LunchSlotIndex: 3,
		Entries:        entries,
	}
}

func TestAuditCleanUniverse(t *testing.T) {
	a := auditTimetable("a", "A", entryAt("a1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0))
	a.Constraints = []models.Requirement{{SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, FrequencyPerWeek: 1}}
	b := auditTimetable("b", "B", entryAt("b1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 1))

	assert.Empty(t, Audit([]models.Timetable{a, b}))
}

func TestAuditReportsTeacherConflictOnce(t *testing.T) {
	a := auditTimetable("a", "A", entryAt("a1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0))
	b := auditTimetable("b", "B", entryAt("b1", "Physics Lab", " teachera ", models.EntryTypeLab, models.Monday, 0))

	findings := Audit([]models.Timetable{a, b})
	require.Len(t, findings, 1)
	assert.Equal(t, FindingTeacherConflict, findings[0].Kind)
	assert.Equal(t, "a", findings[0].TimetableID)
	assert.True(t, findings[0].Critical)
	assert.Contains(t, findings[0].Detail, "Computer Y2 S3 Div B")
}

func TestAuditStructureAndOverScheduling(t *testing.T) {
	a := auditTimetable("a", "A",
		entryAt("a1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0),
		entryAt("a2", "Math", "TeacherA", models.EntryTypeSubject, models.Tuesday, 0),
		entryAt("a3", "Art", "TeacherZ", models.EntryTypeSubject, models.Wednesday, 3),
	)
	a.Constraints = []models.Requirement{
		{SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, FrequencyPerWeek: 1},
		{SubjectName: "Art", TeacherName: "TeacherZ", Type: models.EntryTypeSubject, FrequencyPerWeek: 1},
	}

	findings := Audit([]models.Timetable{a})
	require.Len(t, findings, 2)
	assert.Equal(t, FindingStructure, findings[0].Kind)
	assert.True(t, findings[0].Critical)
	assert.Equal(t, FindingOverScheduled, findings[1].Kind)
	assert.False(t, findings[1].Critical)
	assert.Equal(t, "Math placed 2 times, constraints ask for 1", findings[1].Detail)
}

func TestAuditSkipsPooledLectures(t *testing.T) {
	a := auditTimetable("a", "A",
		entryAt("a1", "Math", "TeacherA", models.EntryTypeSubject, models.Monday, 0),
		entryAt("a2", "Math", "TeacherA", models.EntryTypeSubject, models.Tuesday, 0),
	)
	a.Constraints = []models.Requirement{{SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, FrequencyPerWeek: 1}}
	a.AddedEntries = []models.PoolTemplate{{BlockID: "p1", SubjectName: "Math", TeacherName: "TeacherA", Type: models.EntryTypeSubject, Duration: 1}}

	assert.Empty(t, Audit([]models.Timetable{a}))
}
