package scheduler

import (
	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// RegenerateOptions tunes the solver run behind Regenerate.
type RegenerateOptions struct {
	Attempts   int
	Seed       int64
	NewBlockID func() string
}

// RegenerateResult carries the rebuilt timetable and how the solver fared.
type RegenerateResult struct {
	Timetable models.Timetable
	Solve     SolveResult
	Fixed     int
}

// CombinedRequirements returns the timetable constraints followed by its pool
// templates read as requirements.
func CombinedRequirements(tt models.Timetable) []models.Requirement {
	combined := make([]models.Requirement, 0, len(tt.Constraints)+len(tt.AddedEntries))
	combined = append(combined, tt.Constraints...)
	for _, item := range tt.AddedEntries {
		freq := item.FrequencyPerWeek
		if freq < 1 {
			freq = 1
		}
		entryType := item.Type
		if entryType == "" {
			entryType = models.EntryTypeSubject
		}
		combined = append(combined, models.Requirement{
			ID:               item.BlockID,
			SubjectName:      item.SubjectName,
			TeacherName:      item.TeacherName,
			Type:             entryType,
			FrequencyPerWeek: freq,
			Duration:         item.Duration,
			Color:            item.Color,
		})
	}
	return combined
}

// FixedEntries returns the entries not derived from any of reqs.
func FixedEntries(entries []models.Entry, reqs []models.Requirement) []models.Entry {
	derived := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		derived[requirementKey(req)] = struct{}{}
	}
	var fixed []models.Entry
	for _, entry := range entries {
		if _, ok := derived[entryKey(entry)]; ok {
			continue
		}
		fixed = append(fixed, entry)
	}
	return fixed
}

// Regenerate re-packs every constraint-derived entry of tt while holding the other
// entries in place. The returned timetable has its removed pool cleared; tt itself
// is left untouched.
func Regenerate(tt models.Timetable, universe []models.Timetable, opts RegenerateOptions) (RegenerateResult, error) {
	combined := CombinedRequirements(tt)
	if err := ValidateRequirements(combined); err != nil {
		return RegenerateResult{}, err
	}
	fixed := FixedEntries(tt.Entries, combined)

	solved := Solve(SolveInput{
		Requirements:       combined,
		LunchSlotIndex:     tt.LunchSlotIndex,
		Universe:           universe,
		ExcludeTimetableID: tt.ID,
		FixedEntries:       fixed,
		Attempts:           opts.Attempts,
		Seed:               opts.Seed,
		NewBlockID:         opts.NewBlockID,
	})

	out := tt.Clone()
	out.Entries = solved.Entries
	out.DeletedEntries = []models.Entry{}
	return RegenerateResult{Timetable: out, Solve: solved, Fixed: len(fixed)}, nil
}
