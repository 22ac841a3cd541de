package scheduler

import (
	"fmt"
	"sort"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// FindingKind classifies an audit finding.
type FindingKind string

const (
	FindingStructure       FindingKind = "STRUCTURE"
	FindingTeacherConflict FindingKind = "TEACHER_CONFLICT"
	FindingOverScheduled   FindingKind = "OVER_SCHEDULED"
)

// Finding is one invariant violation found in stored timetables.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	TimetableID string      `json:"timetableId"`
	Class       string      `json:"class"`
	Detail      string      `json:"detail"`
	Critical    bool        `json:"critical"`
}

// Audit re-checks every stored timetable: intra-timetable placement rules,
// cross-timetable teacher double-bookings (each pair reported once) and lectures
// placed more often than their constraints ask for.
func Audit(all []models.Timetable) []Finding {
	var findings []Finding
	seenPairs := make(map[string]struct{})

	for _, tt := range all {
		class := tt.Key().String()

		if err := ValidateEntries(tt); err != nil {
			findings = append(findings, Finding{
				Kind:        FindingStructure,
				TimetableID: tt.ID,
				Class:       class,
				Detail:      err.Error(),
				Critical:    true,
			})
		}

		for _, conflict := range FindTeacherConflicts(tt, all) {
			pair := conflictPairKey(tt.ID, conflict)
			if _, dup := seenPairs[pair]; dup {
				continue
			}
			seenPairs[pair] = struct{}{}
			findings = append(findings, Finding{
				Kind:        FindingTeacherConflict,
				TimetableID: tt.ID,
				Class:       class,
				Detail: fmt.Sprintf("%s teaches %s slot %d here and %s in %s",
					conflict.TeacherName, conflict.Day, conflict.SlotIndex,
					conflict.ConflictWith.SubjectName, conflictClass(conflict.ConflictWith)),
				Critical: true,
			})
		}

		findings = append(findings, overScheduled(tt, class)...)
	}
	return findings
}

func overScheduled(tt models.Timetable, class string) []Finding {
	pooled := make(map[string]struct{}, len(tt.AddedEntries))
	for _, item := range tt.AddedEntries {
		pooled[LectureKey(item.SubjectName, item.Type, item.TeacherName)] = struct{}{}
	}
	wanted := make(map[string]int)
	names := make(map[string]string)
	for _, req := range tt.Constraints {
		key := requirementKey(req)
		wanted[key] += req.FrequencyPerWeek
		names[key] = req.SubjectName
	}
	placed := make(map[string]int)
	for _, entry := range tt.Entries {
		placed[entryKey(entry)]++
	}

	keys := make([]string, 0, len(wanted))
	for key := range wanted {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var findings []Finding
	for _, key := range keys {
		if _, ok := pooled[key]; ok {
			continue
		}
		if placed[key] > wanted[key] {
			findings = append(findings, Finding{
				Kind:        FindingOverScheduled,
				TimetableID: tt.ID,
				Class:       class,
				Detail:      fmt.Sprintf("%s placed %d times, constraints ask for %d", names[key], placed[key], wanted[key]),
			})
		}
	}
	return findings
}

func conflictPairKey(timetableID string, c models.TeacherConflict) string {
	a := fmt.Sprintf("%s|%s|%d", timetableID, c.Day, c.SlotIndex)
	b := fmt.Sprintf("%s|%s|%d", c.ConflictWith.TimetableID, c.Day, c.ConflictWith.SlotIndex)
	if b < a {
		a, b = b, a
	}
	return NormalizeName(c.TeacherName) + "|" + a + "|" + b
}

func conflictClass(info models.ConflictInfo) string {
	return models.ClassKey{
		Department:  info.Department,
		CollegeYear: info.CollegeYear,
		Semester:    info.Semester,
		Division:    info.Division,
	}.String()
}
