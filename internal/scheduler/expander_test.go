package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func TestSortRequirementsHardestFirst(t *testing.T) {
	reqs := []models.Requirement{
		{ID: "r1", SubjectName: "Zoology", TeacherName: "T1", Type: models.EntryTypeSubject, FrequencyPerWeek: 2},
		{ID: "r2", SubjectName: "Chemistry Lab", TeacherName: "T2", Type: models.EntryTypeLab, FrequencyPerWeek: 2},
		{ID: "r3", SubjectName: "Algebra", TeacherName: "T3", Type: models.EntryTypeSubject, FrequencyPerWeek: 4},
		{ID: "r4", SubjectName: "Botany", TeacherName: "T4", Type: models.EntryTypeSubject, FrequencyPerWeek: 2},
	}

	sorted := SortRequirements(reqs)
	ids := make([]string, len(sorted))
	for i, req := range sorted {
		ids[i] = req.ID
	}
	assert.Equal(t, []string{"r3", "r2", "r4", "r1"}, ids)
	assert.Equal(t, "r1", reqs[0].ID, "input must not be reordered")
}

func TestExpandProducesOneInstancePerOccurrence(t *testing.T) {
	reqs := []models.Requirement{
		{SubjectName: "Math", TeacherName: "A", Type: models.EntryTypeSubject, FrequencyPerWeek: 3},
		{SubjectName: "Physics Lab", TeacherName: "B", Type: models.EntryTypeLab, FrequencyPerWeek: 1},
	}

	instances := Expand(reqs)
	require.Len(t, instances, 4)
	assert.Equal(t, "Math", instances[0].Requirement.SubjectName)
	assert.Equal(t, 0, instances[0].Occurrence)
	assert.Equal(t, 2, instances[2].Occurrence)
	assert.Equal(t, "Physics Lab", instances[3].Requirement.SubjectName)
	assert.Equal(t, 4, RequestedBlocks(reqs))
}

func TestValidateRequirements(t *testing.T) {
	valid := models.Requirement{SubjectName: "Math", TeacherName: "A", Type: models.EntryTypeSubject, FrequencyPerWeek: 1}
	require.NoError(t, ValidateRequirements([]models.Requirement{valid}))

	cases := []struct {
		name   string
		mutate func(r *models.Requirement)
		field  string
	}{
		{"blank subject", func(r *models.Requirement) { r.SubjectName = "  " }, "subjectName"},
		{"blank teacher", func(r *models.Requirement) { r.TeacherName = "" }, "teacherName"},
		{"zero frequency", func(r *models.Requirement) { r.FrequencyPerWeek = 0 }, "frequencyPerWeek"},
		{"unknown type", func(r *models.Requirement) { r.Type = "SEMINAR" }, "type"},
		{"too long", func(r *models.Requirement) { r.Duration = SlotCount + 1 }, "duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := ValidateRequirements([]models.Requirement{valid, req})
			var reqErr *RequirementError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, 1, reqErr.Index)
			assert.Equal(t, tc.field, reqErr.Field)
		})
	}
}
