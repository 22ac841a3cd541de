package scheduler

import (
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrDeletedNotFound   = errors.New("removed entry not found")
	ErrTemplateNotFound  = errors.New("pool template not found")
	ErrTemplateExhausted = errors.New("pool template has no remaining occurrences")
)

// Editor applies single-block edits to a timetable. Universe is the set of all
// stored timetables used for teacher exclusivity; the edited timetable itself is
// excluded by id. A failed edit never mutates the timetable.
type Editor struct {
	Universe   []models.Timetable
	NewBlockID func() string
}

// NewEditor builds an editor; newBlockID defaults to random UUIDs.
func NewEditor(universe []models.Timetable, newBlockID func() string) *Editor {
	if newBlockID == nil {
		newBlockID = uuid.NewString
	}
	return &Editor{Universe: universe, NewBlockID: newBlockID}
}

func (e *Editor) check(tt *models.Timetable, candidate models.Entry, ignoreBlockID string) error {
	if err := CheckPlacement(tt.Entries, candidate, tt.LunchSlotIndex, ignoreBlockID); err != nil {
		return err
	}
	return CheckTeacher(e.Universe, candidate, tt.ID)
}

// Move places an existing entry at day/slot. Only Day and SlotIndex change.
func (e *Editor) Move(tt *models.Timetable, blockID string, day models.Weekday, slotIndex int) (models.Entry, error) {
	idx := indexOfEntry(tt.Entries, blockID)
	if idx < 0 {
		return models.Entry{}, ErrEntryNotFound
	}
	moved := tt.Entries[idx]
	moved.Day = day
	moved.SlotIndex = slotIndex
	if err := e.check(tt, moved, blockID); err != nil {
		return models.Entry{}, err
	}

	next := append([]models.Entry(nil), tt.Entries...)
	next[idx] = moved
	tt.Entries = next
	return moved, nil
}

// Delete moves an entry to the removed pool with its position stripped.
func (e *Editor) Delete(tt *models.Timetable, blockID string) (models.Entry, error) {
	idx := indexOfEntry(tt.Entries, blockID)
	if idx < 0 {
		return models.Entry{}, ErrEntryNotFound
	}
	removed := tt.Entries[idx]
	removed.Day = ""
	removed.SlotIndex = 0

	tt.Entries = withoutEntry(tt.Entries, idx)
	tt.DeletedEntries = append(append([]models.Entry(nil), tt.DeletedEntries...), removed)
	return removed, nil
}

// Restore puts a removed entry back on the grid under a fresh block id.
func (e *Editor) Restore(tt *models.Timetable, blockID string, day models.Weekday, slotIndex int) (models.Entry, error) {
	idx := indexOfEntry(tt.DeletedEntries, blockID)
	if idx < 0 {
		return models.Entry{}, ErrDeletedNotFound
	}
	restored := tt.DeletedEntries[idx]
	restored.Day = day
	restored.SlotIndex = slotIndex
	if err := e.check(tt, restored, ""); err != nil {
		return models.Entry{}, err
	}
	restored.BlockID = e.NewBlockID()

	tt.Entries = append(append([]models.Entry(nil), tt.Entries...), restored)
	tt.DeletedEntries = withoutEntry(tt.DeletedEntries, idx)
	return restored, nil
}

// Purge drops a removed entry for good.
func (e *Editor) Purge(tt *models.Timetable, blockID string) error {
	idx := indexOfEntry(tt.DeletedEntries, blockID)
	if idx < 0 {
		return ErrDeletedNotFound
	}
	tt.DeletedEntries = withoutEntry(tt.DeletedEntries, idx)
	return nil
}

// PlaceTemplate creates one entry from a pool template and consumes one occurrence.
// Templates reaching zero are removed from the pool.
func (e *Editor) PlaceTemplate(tt *models.Timetable, templateID string, day models.Weekday, slotIndex int) (models.Entry, error) {
	idx := indexOfTemplate(tt.AddedEntries, templateID)
	if idx < 0 {
		return models.Entry{}, ErrTemplateNotFound
	}
	template := tt.AddedEntries[idx]
	if template.FrequencyPerWeek <= 0 {
		return models.Entry{}, ErrTemplateExhausted
	}
	created := entryFromTemplate(template)
	created.Day = day
	created.SlotIndex = slotIndex
	if err := e.check(tt, created, ""); err != nil {
		return models.Entry{}, err
	}
	created.BlockID = e.NewBlockID()

	pool := make([]models.PoolTemplate, 0, len(tt.AddedEntries))
	for i, item := range tt.AddedEntries {
		if i == idx {
			item.FrequencyPerWeek--
		}
		if item.FrequencyPerWeek > 0 {
			pool = append(pool, item)
		}
	}
	tt.Entries = append(append([]models.Entry(nil), tt.Entries...), created)
	tt.AddedEntries = pool
	return created, nil
}

// AddTemplate appends an ad-hoc requirement to the pool.
func (e *Editor) AddTemplate(tt *models.Timetable, req models.Requirement) (models.PoolTemplate, error) {
	if err := ValidateRequirements([]models.Requirement{req}); err != nil {
		return models.PoolTemplate{}, err
	}
	template := models.PoolTemplate{
		BlockID:          e.NewBlockID(),
		SubjectName:      req.SubjectName,
		TeacherName:      req.TeacherName,
		Type:             req.Type,
		Duration:         req.BlockDuration(),
		Color:            req.Color,
		FrequencyPerWeek: req.FrequencyPerWeek,
	}
	if template.Color == "" {
		template.Color = ColorForLecture(req.SubjectName, req.Type, req.TeacherName)
	}
	tt.AddedEntries = append(append([]models.PoolTemplate(nil), tt.AddedEntries...), template)
	return template, nil
}

// RemoveTemplate deletes a template from the pool.
func (e *Editor) RemoveTemplate(tt *models.Timetable, templateID string) error {
	idx := indexOfTemplate(tt.AddedEntries, templateID)
	if idx < 0 {
		return ErrTemplateNotFound
	}
	pool := make([]models.PoolTemplate, 0, len(tt.AddedEntries)-1)
	pool = append(pool, tt.AddedEntries[:idx]...)
	tt.AddedEntries = append(pool, tt.AddedEntries[idx+1:]...)
	return nil
}

func entryFromTemplate(t models.PoolTemplate) models.Entry {
	entryType := t.Type
	if entryType == "" {
		entryType = models.EntryTypeSubject
	}
	duration := t.Duration
	if duration < 1 {
		duration = models.DurationFor(entryType)
	}
	color := t.Color
	if color == "" {
		color = ColorForLecture(t.SubjectName, entryType, t.TeacherName)
	}
	return models.Entry{
		SubjectName: t.SubjectName,
		TeacherName: t.TeacherName,
		Type:        entryType,
		Duration:    duration,
		Color:       color,
	}
}

func indexOfEntry(entries []models.Entry, blockID string) int {
	for i := range entries {
		if entries[i].BlockID == blockID {
			return i
		}
	}
	return -1
}

func indexOfTemplate(pool []models.PoolTemplate, blockID string) int {
	for i := range pool {
		if pool[i].BlockID == blockID {
			return i
		}
	}
	return -1
}

func withoutEntry(entries []models.Entry, idx int) []models.Entry {
	out := make([]models.Entry, 0, len(entries)-1)
	out = append(out, entries[:idx]...)
	return append(out, entries[idx+1:]...)
}
