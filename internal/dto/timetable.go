package dto

import (
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
)

// ClassKeyRequest identifies a class.
type ClassKeyRequest struct {
	Department  string `json:"department" form:"department" validate:"required,max=120"`
	CollegeYear int    `json:"collegeYear" form:"collegeYear" validate:"required,min=1,max=4"`
	Semester    int    `json:"semester" form:"semester" validate:"required,min=1,max=8"`
	Division    string `json:"division" form:"division" validate:"required,max=16"`
}

// RequirementRequest is an operator supplied weekly requirement. Duration is derived from the type.
type RequirementRequest struct {
	ID               string `json:"id" validate:"omitempty,max=64"`
	SubjectName      string `json:"subjectName" validate:"required,max=120"`
	TeacherName      string `json:"teacherName" validate:"required,max=120"`
	Type             string `json:"type" validate:"required,oneof=SUBJECT LAB"`
	FrequencyPerWeek int    `json:"frequencyPerWeek" validate:"required,min=1"`
	Color            string `json:"color" validate:"omitempty,max=64"`
}

// TemplateRequest adds an ad-hoc requirement to the pool; duration may be overridden.
type TemplateRequest struct {
	BlockID          string `json:"blockId" validate:"omitempty,max=64"`
	SubjectName      string `json:"subjectName" validate:"required,max=120"`
	TeacherName      string `json:"teacherName" validate:"required,max=120"`
	Type             string `json:"type" validate:"required,oneof=SUBJECT LAB"`
	FrequencyPerWeek int    `json:"frequencyPerWeek" validate:"required,min=1"`
	Duration         int    `json:"duration" validate:"omitempty,min=1,max=8"`
	Color            string `json:"color" validate:"omitempty,max=64"`
}

// AddTemplateRequest adds a template to the pool of a stored timetable.
type AddTemplateRequest struct {
	TemplateRequest
	Version int `json:"version" validate:"omitempty,min=1"`
}

// EntryRequest is a placed (or removed) block supplied by a full save.
type EntryRequest struct {
	BlockID     string `json:"blockId" validate:"omitempty,max=64"`
	SubjectName string `json:"subjectName" validate:"required,max=120"`
	TeacherName string `json:"teacherName" validate:"required,max=120"`
	Type        string `json:"type" validate:"required,oneof=SUBJECT LAB"`
	Duration    int    `json:"duration" validate:"omitempty,min=1,max=8"`
	Color       string `json:"color" validate:"omitempty,max=64"`
	Day         string `json:"day" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday"`
	SlotIndex   int    `json:"slotIndex" validate:"min=0,max=7"`
}

// CreateTimetableRequest creates a class timetable and auto-generates its entries.
type CreateTimetableRequest struct {
	ClassKeyRequest
	LunchSlotIndex *int                 `json:"lunchSlotIndex" validate:"omitempty,min=0,max=7"`
	Constraints    []RequirementRequest `json:"constraints" validate:"required,min=1,max=64,dive"`
	Seed           int64                `json:"seed"`
	Attempts       int                  `json:"attempts" validate:"omitempty,min=1,max=500"`
	CreatedBy      string               `json:"createdBy" validate:"omitempty,max=120"`
	CreatedByName  string               `json:"createdByName" validate:"omitempty,max=120"`
}

// SaveTimetableRequest is the store level payload used by import and full update.
type SaveTimetableRequest struct {
	ClassKeyRequest
	LunchSlotIndex *int                 `json:"lunchSlotIndex" validate:"omitempty,min=0,max=7"`
	Constraints    []RequirementRequest `json:"constraints" validate:"omitempty,max=64,dive"`
	Entries        []EntryRequest       `json:"entries" validate:"omitempty,dive"`
	DeletedEntries []EntryRequest       `json:"deletedEntries" validate:"omitempty,dive"`
	AddedEntries   []TemplateRequest    `json:"addedEntries" validate:"omitempty,dive"`
	Version        int                  `json:"version" validate:"omitempty,min=1"`
	CreatedBy      string               `json:"createdBy" validate:"omitempty,max=120"`
	CreatedByName  string               `json:"createdByName" validate:"omitempty,max=120"`
}

// PlacementRequest targets a grid cell for move, restore or template placement.
type PlacementRequest struct {
	Day       string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday"`
	SlotIndex *int   `json:"slotIndex" validate:"required,min=0,max=7"`
	Version   int    `json:"version" validate:"omitempty,min=1"`
}

// RegenerateRequest tunes a regeneration run.
type RegenerateRequest struct {
	Seed     int64 `json:"seed"`
	Attempts int   `json:"attempts" validate:"omitempty,min=1,max=500"`
	Version  int   `json:"version" validate:"omitempty,min=1"`
}

// TimetableQuery filters the timetable listing.
type TimetableQuery struct {
	Department  string `form:"department" json:"department"`
	CollegeYear int    `form:"collegeYear" json:"collegeYear" validate:"omitempty,min=1,max=4"`
	Semester    int    `form:"semester" json:"semester" validate:"omitempty,min=1,max=8"`
	Division    string `form:"division" json:"division"`
	Page        int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=200"`
}

// TeacherScheduleQuery selects one teacher's personal schedule.
type TeacherScheduleQuery struct {
	TeacherName string `form:"teacherName" json:"teacherName" validate:"required,max=120"`
	Format      string `form:"format" json:"format" validate:"omitempty,oneof=json csv pdf"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// GenerationReport summarises a solver run; a non-empty Warnings means a partial placement.
type GenerationReport struct {
	Requested  int                   `json:"requested"`
	Placed     int                   `json:"placed"`
	Missing    int                   `json:"missing"`
	Fixed      int                   `json:"fixed,omitempty"`
	Seed       int64                 `json:"seed"`
	Attempt    int                   `json:"attempt"`
	Attempts   int                   `json:"attempts"`
	Shortfalls []scheduler.Shortfall `json:"shortfalls,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// TimetableResult wraps a stored timetable with the optional solver report.
type TimetableResult struct {
	Timetable  *models.Timetable `json:"timetable"`
	Generation *GenerationReport `json:"generation,omitempty"`
}

// EditResult is returned by single block edits.
type EditResult struct {
	Timetable *models.Timetable    `json:"timetable"`
	Entry     *models.Entry        `json:"entry,omitempty"`
	Template  *models.PoolTemplate `json:"template,omitempty"`
}

// TeacherScheduleResponse lists the sessions of one teacher.
type TeacherScheduleResponse struct {
	TeacherName string                      `json:"teacherName"`
	Rows        []models.TeacherScheduleRow `json:"rows"`
	Grid        *GridResponse               `json:"grid"`
}

// GridResponse is a day x slot rendering of entries.
type GridResponse struct {
	Title          string           `json:"title"`
	Days           []models.Weekday `json:"days"`
	LunchSlotIndex *int             `json:"lunchSlotIndex,omitempty"`
	Rows           []GridRow        `json:"rows"`
}

// GridRow is one slot across all days.
type GridRow struct {
	SlotIndex int        `json:"slotIndex"`
	Label     string     `json:"label"`
	Cells     []GridCell `json:"cells"`
}

// GridCell describes one day/slot cell; Entry is set on head and continuation cells.
type GridCell struct {
	Day          models.Weekday `json:"day"`
	Lunch        bool           `json:"lunch,omitempty"`
	Head         bool           `json:"head,omitempty"`
	Continuation bool           `json:"continuation,omitempty"`
	Entry        *models.Entry  `json:"entry,omitempty"`
	Label        string         `json:"label,omitempty"`
}
