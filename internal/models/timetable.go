package models

import (
	"fmt"
	"time"
)

// Weekday names a teaching day of the weekly grid.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
)

// EntryType distinguishes single-slot lectures from multi-slot labs.
type EntryType string

const (
	EntryTypeSubject EntryType = "SUBJECT"
	EntryTypeLab     EntryType = "LAB"
)

// DurationFor returns the default block length for a session type.
func DurationFor(t EntryType) int {
	if t == EntryTypeLab {
		return 2
	}
	return 1
}

// ClassKey identifies the class a timetable belongs to.
type ClassKey struct {
	Department  string `json:"department"`
	CollegeYear int    `json:"collegeYear"`
	Semester    int    `json:"semester"`
	Division    string `json:"division"`
}

func (k ClassKey) String() string {
	return fmt.Sprintf("%s Y%d S%d Div %s", k.Department, k.CollegeYear, k.Semester, k.Division)
}

// Requirement states that a subject/teacher pair must appear FrequencyPerWeek times.
type Requirement struct {
	ID               string    `json:"id"`
	SubjectName      string    `json:"subjectName"`
	TeacherName      string    `json:"teacherName"`
	Type             EntryType `json:"type"`
	FrequencyPerWeek int       `json:"frequencyPerWeek"`
	Duration         int       `json:"duration,omitempty"`
	Color            string    `json:"color,omitempty"`
}

// BlockDuration resolves the effective duration, honouring explicit overrides.
func (r Requirement) BlockDuration() int {
	if r.Duration > 0 {
		return r.Duration
	}
	return DurationFor(r.Type)
}

// Entry is a placed session block. SlotIndex is the first occupied slot.
type Entry struct {
	BlockID     string    `json:"blockId"`
	SubjectName string    `json:"subjectName"`
	TeacherName string    `json:"teacherName"`
	Type        EntryType `json:"type"`
	Duration    int       `json:"duration"`
	Color       string    `json:"color,omitempty"`
	Day         Weekday   `json:"day,omitempty"`
	SlotIndex   int       `json:"slotIndex"`
}

// Span returns the block duration, never less than one slot.
func (e Entry) Span() int {
	if e.Duration < 1 {
		return 1
	}
	return e.Duration
}

// PoolTemplate is an ad-hoc requirement kept in a timetable's addedEntries pool.
// FrequencyPerWeek counts the instances that may still be placed.
type PoolTemplate struct {
	BlockID          string    `json:"blockId"`
	SubjectName      string    `json:"subjectName"`
	TeacherName      string    `json:"teacherName"`
	Type             EntryType `json:"type"`
	Duration         int       `json:"duration"`
	Color            string    `json:"color,omitempty"`
	FrequencyPerWeek int       `json:"frequencyPerWeek"`
}

// Timetable is the weekly schedule aggregate of one class.
type Timetable struct {
	ID             string         `json:"id"`
	Department     string         `json:"department"`
	CollegeYear    int            `json:"collegeYear"`
	Semester       int            `json:"semester"`
	Division       string         `json:"division"`
	LunchSlotIndex int            `json:"lunchSlotIndex"`
	Constraints    []Requirement  `json:"constraints"`
	Entries        []Entry        `json:"entries"`
	DeletedEntries []Entry        `json:"deletedEntries"`
	AddedEntries   []PoolTemplate `json:"addedEntries"`
	CreatedBy      string         `json:"createdBy,omitempty"`
	CreatedByName  string         `json:"createdByName,omitempty"`
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Key returns the class key of the timetable.
func (t Timetable) Key() ClassKey {
	return ClassKey{Department: t.Department, CollegeYear: t.CollegeYear, Semester: t.Semester, Division: t.Division}
}

// Clone returns a deep copy so edits never leak into the source value.
func (t Timetable) Clone() Timetable {
	out := t
	out.Constraints = append([]Requirement(nil), t.Constraints...)
	out.Entries = append([]Entry(nil), t.Entries...)
	out.DeletedEntries = append([]Entry(nil), t.DeletedEntries...)
	out.AddedEntries = append([]PoolTemplate(nil), t.AddedEntries...)
	return out
}

// ConflictInfo identifies the existing entry a placement collided with.
type ConflictInfo struct {
	TimetableID string `json:"timetableId"`
	Department  string `json:"department"`
	CollegeYear int    `json:"collegeYear"`
	Semester    int    `json:"semester"`
	Division    string `json:"division"`
	SubjectName string `json:"subjectName"`
	SlotIndex   int    `json:"slotIndex"`
	Duration    int    `json:"duration"`
}

// TeacherConflict is one item of the store rejection payload.
type TeacherConflict struct {
	TeacherName  string       `json:"teacherName"`
	Day          Weekday      `json:"day"`
	SlotIndex    int          `json:"slotIndex"`
	Duration     int          `json:"duration"`
	ConflictWith ConflictInfo `json:"conflictWith"`
}

// TimetableConflictError is returned when a store write would double-book a teacher.
type TimetableConflictError struct {
	Message   string            `json:"error"`
	Conflicts []TeacherConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *TimetableConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// TeacherScheduleRow is one session taught by a teacher, with its owning class.
type TeacherScheduleRow struct {
	ID          string    `json:"id"`
	TimetableID string    `json:"timetableId"`
	Department  string    `json:"department"`
	CollegeYear int       `json:"collegeYear"`
	Semester    int       `json:"semester"`
	Division    string    `json:"division"`
	Day         Weekday   `json:"day"`
	SlotIndex   int       `json:"slotIndex"`
	Duration    int       `json:"duration"`
	SubjectName string    `json:"subjectName"`
	Type        EntryType `json:"type"`
}
