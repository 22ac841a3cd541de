package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

var (
	// ErrDuplicateClassKey is returned when a timetable already exists for the class.
	ErrDuplicateClassKey = errors.New("timetable already exists for this class")
	// ErrVersionConflict is returned when the stored version moved since it was read.
	ErrVersionConflict = errors.New("timetable version changed")
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
)

// IsSerializationFailure reports whether err is a PostgreSQL serialization failure.
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqSerializationFailure
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

const timetableColumns = `id, department, college_year, semester, division, lunch_slot_index,
constraints, entries, deleted_entries, added_entries, created_by, created_by_name, version, created_at, updated_at`

type timetableRow struct {
	ID             string         `db:"id"`
	Department     string         `db:"department"`
	CollegeYear    int            `db:"college_year"`
	Semester       int            `db:"semester"`
	Division       string         `db:"division"`
	LunchSlotIndex int            `db:"lunch_slot_index"`
	Constraints    types.JSONText `db:"constraints"`
	Entries        types.JSONText `db:"entries"`
	DeletedEntries types.JSONText `db:"deleted_entries"`
	AddedEntries   types.JSONText `db:"added_entries"`
	CreatedBy      sql.NullString `db:"created_by"`
	CreatedByName  sql.NullString `db:"created_by_name"`
	Version        int            `db:"version"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (row timetableRow) toModel() (models.Timetable, error) {
	tt := models.Timetable{
		ID:             row.ID,
		Department:     row.Department,
		CollegeYear:    row.CollegeYear,
		Semester:       row.Semester,
		Division:       row.Division,
		LunchSlotIndex: row.LunchSlotIndex,
		CreatedBy:      row.CreatedBy.String,
		CreatedByName:  row.CreatedByName.String,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if err := unmarshalColumn(row.Constraints, &tt.Constraints); err != nil {
		return tt, fmt.Errorf("decode constraints of %s: %w", row.ID, err)
	}
	if err := unmarshalColumn(row.Entries, &tt.Entries); err != nil {
		return tt, fmt.Errorf("decode entries of %s: %w", row.ID, err)
	}
	if err := unmarshalColumn(row.DeletedEntries, &tt.DeletedEntries); err != nil {
		return tt, fmt.Errorf("decode deleted entries of %s: %w", row.ID, err)
	}
	if err := unmarshalColumn(row.AddedEntries, &tt.AddedEntries); err != nil {
		return tt, fmt.Errorf("decode added entries of %s: %w", row.ID, err)
	}
	return tt, nil
}

func unmarshalColumn(raw types.JSONText, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func marshalColumn[T any](items []T) (types.JSONText, error) {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return types.JSONText(payload), nil
}

func toRow(tt *models.Timetable) (timetableRow, error) {
	row := timetableRow{
		ID:             tt.ID,
		Department:     tt.Department,
		CollegeYear:    tt.CollegeYear,
		Semester:       tt.Semester,
		Division:       tt.Division,
		LunchSlotIndex: tt.LunchSlotIndex,
		CreatedBy:      sql.NullString{String: tt.CreatedBy, Valid: tt.CreatedBy != ""},
		CreatedByName:  sql.NullString{String: tt.CreatedByName, Valid: tt.CreatedByName != ""},
		Version:        tt.Version,
		CreatedAt:      tt.CreatedAt,
		UpdatedAt:      tt.UpdatedAt,
	}
	var err error
	if row.Constraints, err = marshalColumn(tt.Constraints); err != nil {
		return row, fmt.Errorf("encode constraints: %w", err)
	}
	if row.Entries, err = marshalColumn(tt.Entries); err != nil {
		return row, fmt.Errorf("encode entries: %w", err)
	}
	if row.DeletedEntries, err = marshalColumn(tt.DeletedEntries); err != nil {
		return row, fmt.Errorf("encode deleted entries: %w", err)
	}
	if row.AddedEntries, err = marshalColumn(tt.AddedEntries); err != nil {
		return row, fmt.Errorf("encode added entries: %w", err)
	}
	return row, nil
}

func rowsToModels(rows []timetableRow) ([]models.Timetable, error) {
	out := make([]models.Timetable, 0, len(rows))
	for _, row := range rows {
		tt, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, nil
}

// TimetableRepository persists class timetables with JSONB entry columns.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListAll returns every stored timetable; this is the universe used for teacher exclusivity.
func (r *TimetableRepository) ListAll(ctx context.Context, exec sqlx.ExtContext) ([]models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables ORDER BY department, college_year, semester, division`
	var rows []timetableRow
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return rowsToModels(rows)
}

// List returns a filtered page of timetables and the total match count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.CollegeYear > 0 {
		args = append(args, filter.CollegeYear)
		conditions = append(conditions, fmt.Sprintf("college_year = $%d", len(args)))
	}
	if filter.Semester > 0 {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Division != "" {
		args = append(args, filter.Division)
		conditions = append(conditions, fmt.Sprintf("division = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM timetables`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM timetables%s ORDER BY department, college_year, semester, division LIMIT $%d OFFSET $%d`,
		timetableColumns, where, len(args)-1, len(args))

	var rows []timetableRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	items, err := rowsToModels(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`
	var row timetableRow
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, id); err != nil {
		return nil, err
	}
	tt, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// FindByClassKey loads the timetable of a class.
func (r *TimetableRepository) FindByClassKey(ctx context.Context, exec sqlx.ExtContext, key models.ClassKey) (*models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables
WHERE department = $1 AND college_year = $2 AND semester = $3 AND division = $4`
	var row timetableRow
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, key.Department, key.CollegeYear, key.Semester, key.Division); err != nil {
		return nil, err
	}
	tt, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// Create inserts a new timetable at version 1.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error {
	if tt == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if tt.ID == "" {
		tt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tt.CreatedAt.IsZero() {
		tt.CreatedAt = now
	}
	tt.UpdatedAt = now
	tt.Version = 1

	row, err := toRow(tt)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO timetables (id, department, college_year, semester, division, lunch_slot_index,
	constraints, entries, deleted_entries, added_entries, created_by, created_by_name, version, created_at, updated_at)
VALUES (:id, :department, :college_year, :semester, :division, :lunch_slot_index,
	:constraints, :entries, :deleted_entries, :added_entries, :created_by, :created_by_name, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, row); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateClassKey
		}
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// Update overwrites a timetable when its stored version still equals expectedVersion
// and bumps the version.
func (r *TimetableRepository) Update(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable, expectedVersion int) error {
	if tt == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	tt.UpdatedAt = time.Now().UTC()
	row, err := toRow(tt)
	if err != nil {
		return err
	}

	const query = `
UPDATE timetables SET department = $1, college_year = $2, semester = $3, division = $4, lunch_slot_index = $5,
	constraints = $6, entries = $7, deleted_entries = $8, added_entries = $9, version = version + 1, updated_at = $10
WHERE id = $11 AND version = $12`
	result, err := r.exec(exec).ExecContext(ctx, query,
		row.Department, row.CollegeYear, row.Semester, row.Division, row.LunchSlotIndex,
		row.Constraints, row.Entries, row.DeletedEntries, row.AddedEntries, row.UpdatedAt,
		row.ID, expectedVersion)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateClassKey
		}
		return fmt.Errorf("update timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	tt.Version = expectedVersion + 1
	return nil
}

// Delete removes a stored timetable.
func (r *TimetableRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
