package scheduler

import (
	"errors"
	"fmt"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// PlacementReason classifies why a block could not be placed.
type PlacementReason string

const (
	ReasonOutOfBounds     PlacementReason = "OUT_OF_BOUNDS"
	ReasonInvalidDay      PlacementReason = "INVALID_DAY"
	ReasonLunchSlot       PlacementReason = "LUNCH_SLOT"
	ReasonOverlap         PlacementReason = "OVERLAP"
	ReasonTeacherConflict PlacementReason = "TEACHER_CONFLICT"
)

// PlacementError explains a rejected placement so callers can show the operator why.
type PlacementError struct {
	Reason      PlacementReason      `json:"reason"`
	TeacherName string               `json:"teacherName,omitempty"`
	SubjectName string               `json:"subjectName,omitempty"`
	Day         models.Weekday       `json:"day"`
	SlotIndex   int                  `json:"slotIndex"`
	Duration    int                  `json:"duration"`
	Overlapping *models.Entry        `json:"overlapping,omitempty"`
	Conflict    *models.ConflictInfo `json:"conflictWith,omitempty"`
}

func (e *PlacementError) Error() string {
	switch e.Reason {
	case ReasonOutOfBounds:
		return fmt.Sprintf("block of %d slot(s) at slot %d does not fit in the day", e.Duration, e.SlotIndex+1)
	case ReasonInvalidDay:
		return fmt.Sprintf("%q is not a teaching day", e.Day)
	case ReasonLunchSlot:
		return fmt.Sprintf("%s slot %d overlaps the lunch break", e.Day, e.SlotIndex+1)
	case ReasonOverlap:
		name := "another lecture"
		if e.Overlapping != nil && e.Overlapping.SubjectName != "" {
			name = e.Overlapping.SubjectName
		}
		return fmt.Sprintf("%s slot %d is already taken by %s", e.Day, e.SlotIndex+1, name)
	case ReasonTeacherConflict:
		c := e.Conflict
		if c == nil {
			return fmt.Sprintf("%s is already teaching on %s at slot %d", e.TeacherName, e.Day, e.SlotIndex+1)
		}
		subject := c.SubjectName
		if subject == "" {
			subject = "a lecture"
		}
		return fmt.Sprintf("%s already has %s on %s at slot %d in %s Div %s (Y%d S%d)",
			e.TeacherName, subject, e.Day, c.SlotIndex+1, c.Department, c.Division, c.CollegeYear, c.Semester)
	}
	return "placement rejected"
}

// AsPlacementError unwraps err into a *PlacementError.
func AsPlacementError(err error) (*PlacementError, bool) {
	var pe *PlacementError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CheckPlacement validates candidate against the other entries of the same timetable.
// An entry whose BlockID equals ignoreBlockID is skipped, which lets a block move
// onto a range it already partly covers.
func CheckPlacement(existing []models.Entry, candidate models.Entry, lunchSlotIndex int, ignoreBlockID string) error {
	dur := candidate.Span()
	reject := func(reason PlacementReason) *PlacementError {
		return &PlacementError{
			Reason:      reason,
			TeacherName: candidate.TeacherName,
			SubjectName: candidate.SubjectName,
			Day:         candidate.Day,
			SlotIndex:   candidate.SlotIndex,
			Duration:    dur,
		}
	}
	if !ValidDay(candidate.Day) {
		return reject(ReasonInvalidDay)
	}
	if !InBounds(candidate.SlotIndex, dur) {
		return reject(ReasonOutOfBounds)
	}
	if coversSlot(candidate.SlotIndex, dur, lunchSlotIndex) {
		return reject(ReasonLunchSlot)
	}
	for i := range existing {
		other := existing[i]
		if ignoreBlockID != "" && other.BlockID == ignoreBlockID {
			continue
		}
		if entriesOverlap(other, candidate.Day, candidate.SlotIndex, dur) {
			pe := reject(ReasonOverlap)
			pe.Overlapping = &other
			return pe
		}
	}
	return nil
}

// CanPlace is the boolean form of CheckPlacement.
func CanPlace(existing []models.Entry, candidate models.Entry, lunchSlotIndex int, ignoreBlockID string) bool {
	return CheckPlacement(existing, candidate, lunchSlotIndex, ignoreBlockID) == nil
}

// FindTeacherConflict scans every timetable except excludeTimetableID for an entry of
// the same teacher overlapping day/slot/duration and describes the first one found.
func FindTeacherConflict(all []models.Timetable, teacherName string, day models.Weekday, slotIndex, duration int, excludeTimetableID string) *models.ConflictInfo {
	teacher := NormalizeName(teacherName)
	if teacher == "" {
		return nil
	}
	for i := range all {
		tt := &all[i]
		if excludeTimetableID != "" && tt.ID == excludeTimetableID {
			continue
		}
		for _, entry := range tt.Entries {
			if NormalizeName(entry.TeacherName) != teacher {
				continue
			}
			if !entriesOverlap(entry, day, slotIndex, duration) {
				continue
			}
			return &models.ConflictInfo{
				TimetableID: tt.ID,
				Department:  tt.Department,
				CollegeYear: tt.CollegeYear,
				Semester:    tt.Semester,
				Division:    tt.Division,
				SubjectName: entry.SubjectName,
				SlotIndex:   entry.SlotIndex,
				Duration:    entry.Span(),
			}
		}
	}
	return nil
}

// CheckTeacher wraps FindTeacherConflict into a PlacementError.
func CheckTeacher(all []models.Timetable, candidate models.Entry, excludeTimetableID string) error {
	conflict := FindTeacherConflict(all, candidate.TeacherName, candidate.Day, candidate.SlotIndex, candidate.Span(), excludeTimetableID)
	if conflict == nil {
		return nil
	}
	return &PlacementError{
		Reason:      ReasonTeacherConflict,
		TeacherName: candidate.TeacherName,
		SubjectName: candidate.SubjectName,
		Day:         candidate.Day,
		SlotIndex:   candidate.SlotIndex,
		Duration:    candidate.Span(),
		Conflict:    conflict,
	}
}

// FindTeacherConflicts checks every entry of candidate against all other timetables
// and reports at most one conflict per candidate entry.
func FindTeacherConflicts(candidate models.Timetable, all []models.Timetable) []models.TeacherConflict {
	var conflicts []models.TeacherConflict
	for _, entry := range candidate.Entries {
		if NormalizeName(entry.TeacherName) == "" || entry.Day == "" {
			continue
		}
		hit := FindTeacherConflict(all, entry.TeacherName, entry.Day, entry.SlotIndex, entry.Span(), candidate.ID)
		if hit == nil {
			continue
		}
		conflicts = append(conflicts, models.TeacherConflict{
			TeacherName:  entry.TeacherName,
			Day:          entry.Day,
			SlotIndex:    entry.SlotIndex,
			Duration:     entry.Span(),
			ConflictWith: *hit,
		})
	}
	return conflicts
}

// ErrDuplicateBlockID is returned when two blocks of one timetable share an id
// across placed entries, removed entries and pool templates.
var ErrDuplicateBlockID = errors.New("duplicate block id")

// ValidateBlockIDs checks that block ids are unique within tt. Blank ids are
// left to the caller.
func ValidateBlockIDs(tt models.Timetable) error {
	seen := make(map[string]struct{}, len(tt.Entries)+len(tt.DeletedEntries)+len(tt.AddedEntries))
	check := func(id string) error {
		if id == "" {
			return nil
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateBlockID, id)
		}
		seen[id] = struct{}{}
		return nil
	}
	for _, entry := range tt.Entries {
		if err := check(entry.BlockID); err != nil {
			return err
		}
	}
	for _, entry := range tt.DeletedEntries {
		if err := check(entry.BlockID); err != nil {
			return err
		}
	}
	for _, template := range tt.AddedEntries {
		if err := check(template.BlockID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEntries checks the intra-timetable invariants: unique block ids and
// a legal, non-overlapping placement for every entry.
func ValidateEntries(tt models.Timetable) error {
	if err := ValidateBlockIDs(tt); err != nil {
		return err
	}
	for i, entry := range tt.Entries {
		if err := CheckPlacement(tt.Entries[:i], entry, tt.LunchSlotIndex, ""); err != nil {
			return err
		}
	}
	return nil
}
