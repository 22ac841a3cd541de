package scheduler

import (
	"sort"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// SessionInstance is one occurrence of a requirement waiting to be placed.
type SessionInstance struct {
	Requirement models.Requirement
	Occurrence  int
}

// SortRequirements orders requirements hardest-first: more frequent, then longer,
// then by lecture key. The input slice is not modified.
func SortRequirements(reqs []models.Requirement) []models.Requirement {
	sorted := make([]models.Requirement, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.FrequencyPerWeek != b.FrequencyPerWeek {
			return a.FrequencyPerWeek > b.FrequencyPerWeek
		}
		if da, db := a.BlockDuration(), b.BlockDuration(); da != db {
			return da > db
		}
		return requirementKey(a) < requirementKey(b)
	})
	return sorted
}

// Expand flattens requirements into one instance per weekly occurrence, in solver order.
func Expand(reqs []models.Requirement) []SessionInstance {
	var out []SessionInstance
	for _, req := range SortRequirements(reqs) {
		for i := 0; i < req.FrequencyPerWeek; i++ {
			out = append(out, SessionInstance{Requirement: req, Occurrence: i})
		}
	}
	return out
}

// RequestedBlocks is the total number of blocks the requirements ask for.
func RequestedBlocks(reqs []models.Requirement) int {
	total := 0
	for _, req := range reqs {
		if req.FrequencyPerWeek > 0 {
			total += req.FrequencyPerWeek
		}
	}
	return total
}

// ValidateRequirements rejects requirements the solver cannot interpret.
func ValidateRequirements(reqs []models.Requirement) error {
	for i, req := range reqs {
		if NormalizeName(req.SubjectName) == "" {
			return &RequirementError{Index: i, Field: "subjectName", Message: "subject name is required"}
		}
		if NormalizeName(req.TeacherName) == "" {
			return &RequirementError{Index: i, Field: "teacherName", Message: "teacher name is required"}
		}
		if req.FrequencyPerWeek < 1 {
			return &RequirementError{Index: i, Field: "frequencyPerWeek", Message: "frequency per week must be at least 1"}
		}
		if req.Type != models.EntryTypeSubject && req.Type != models.EntryTypeLab {
			return &RequirementError{Index: i, Field: "type", Message: "type must be SUBJECT or LAB"}
		}
		if req.BlockDuration() > SlotCount {
			return &RequirementError{Index: i, Field: "duration", Message: "duration exceeds the slots in a day"}
		}
	}
	return nil
}

// RequirementError points at the offending requirement of a request.
type RequirementError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *RequirementError) Error() string {
	return e.Message
}
