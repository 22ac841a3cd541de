package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/repository"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

const teacherConflictMessage = "Teacher timetable conflict detected. Same teacher cannot have overlapping lectures across timetables."

type timetableRepository interface {
	ListAll(ctx context.Context, exec sqlx.ExtContext) ([]models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Timetable, error)
	FindByClassKey(ctx context.Context, exec sqlx.ExtContext, key models.ClassKey) (*models.Timetable, error)
	Create(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error
	Update(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable, expectedVersion int) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableServiceConfig carries solver defaults.
type TimetableServiceConfig struct {
	Attempts         int
	Seed             int64
	DefaultLunchSlot int
	CacheTTL         time.Duration
}

// TimetableService is the timetable store. Every write reloads the universe inside a
// serializable transaction, validates last and persists with a version check.
type TimetableService struct {
	repo       timetableRepository
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableServiceConfig
	newBlockID func() string
}

// NewTimetableService wires the timetable store.
func NewTimetableService(
	repo timetableRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = scheduler.DefaultAttempts
	}
	if cfg.DefaultLunchSlot < 0 || cfg.DefaultLunchSlot >= scheduler.SlotCount {
		cfg.DefaultLunchSlot = 3
	}
	return &TimetableService{
		repo:       repo,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		newBlockID: uuid.NewString,
	}
}

// List returns a page of timetables.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	type cachedPage struct {
		Items []models.Timetable `json:"items"`
		Total int                `json:"total"`
	}
	filter := models.TimetableFilter{
		Department:  query.Department,
		CollegeYear: query.CollegeYear,
		Semester:    query.Semester,
		Division:    query.Division,
		Page:        page,
		PageSize:    size,
	}
	key := ListKey(filter)
	view := s.cache.View(ctx)
	var cached cachedPage
	if view.Get(ctx, key, &cached) {
		return cached.Items, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.Total}, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	view.Set(ctx, key, cachedPage{Items: items, Total: total}, s.cfg.CacheTTL)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one timetable.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	tt, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storageError(err, "failed to load timetable")
	}
	return tt, nil
}

// GetByClassKey loads the timetable of a class.
func (s *TimetableService) GetByClassKey(ctx context.Context, req dto.ClassKeyRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class key")
	}
	tt, err := s.repo.FindByClassKey(ctx, nil, classKey(req))
	if err != nil {
		return nil, storageError(err, "failed to load timetable")
	}
	return tt, nil
}

// Create stores a new class timetable and fills it with the solver.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest) (*dto.TimetableResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := validateClassKey(req.ClassKeyRequest); err != nil {
		return nil, err
	}
	reqs := s.toRequirements(req.Constraints)
	if err := scheduler.ValidateRequirements(reqs); err != nil {
		return nil, s.mapEditError(err)
	}

	tt := &models.Timetable{
		ID:             uuid.NewString(),
		Department:     strings.TrimSpace(req.Department),
		CollegeYear:    req.CollegeYear,
		Semester:       req.Semester,
		Division:       strings.TrimSpace(req.Division),
		LunchSlotIndex: s.lunchSlot(req.LunchSlotIndex),
		Constraints:    reqs,
		DeletedEntries: []models.Entry{},
		AddedEntries:   []models.PoolTemplate{},
		CreatedBy:      req.CreatedBy,
		CreatedByName:  req.CreatedByName,
	}

	var solved scheduler.SolveResult
	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		if err := s.ensureClassKeyFree(ctx, exec, tt.Key(), ""); err != nil {
			return err
		}
		universe, err := s.repo.ListAll(ctx, exec)
		if err != nil {
			return storageError(err, "failed to load timetables")
		}
		solved = s.solve(scheduler.SolveInput{
			Requirements:       reqs,
			LunchSlotIndex:     tt.LunchSlotIndex,
			Universe:           universe,
			ExcludeTimetableID: tt.ID,
			Attempts:           s.attempts(req.Attempts),
			Seed:               s.seed(req.Seed),
			NewBlockID:         s.newBlockID,
		})
		tt.Entries = solved.Entries
		if err := s.validateForStore(tt, universe); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, exec, tt); err != nil {
			return storageError(err, "failed to create timetable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	report := generationReport(solved, 0)
	s.logger.Info("timetable generated",
		zap.String("timetable_id", tt.ID),
		zap.String("class", tt.Key().String()),
		zap.Int("placed", solved.Placed),
		zap.Int("requested", solved.Requested),
		zap.Int64("seed", solved.Seed),
		zap.Int("attempt", solved.Attempt),
	)
	return &dto.TimetableResult{Timetable: tt, Generation: report}, nil
}

// Import stores a timetable with explicit entries; it runs the same checks as Update.
func (s *TimetableService) Import(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := validateClassKey(req.ClassKeyRequest); err != nil {
		return nil, err
	}
	tt := s.fromSaveRequest(req)
	tt.ID = uuid.NewString()
	if err := scheduler.ValidateRequirements(tt.Constraints); err != nil {
		return nil, s.mapEditError(err)
	}

	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		if err := s.ensureClassKeyFree(ctx, exec, tt.Key(), ""); err != nil {
			return err
		}
		universe, err := s.repo.ListAll(ctx, exec)
		if err != nil {
			return storageError(err, "failed to load timetables")
		}
		if err := s.validateForStore(tt, universe); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, exec, tt); err != nil {
			return storageError(err, "failed to create timetable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return tt, nil
}

// Update replaces a stored timetable. A non-zero Version must match the stored one.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if err := validateClassKey(req.ClassKeyRequest); err != nil {
		return nil, err
	}
	next := s.fromSaveRequest(req)
	next.ID = id
	if err := scheduler.ValidateRequirements(next.Constraints); err != nil {
		return nil, s.mapEditError(err)
	}

	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return storageError(err, "failed to load timetable")
		}
		if err := checkVersion(current, req.Version); err != nil {
			return err
		}
		if current.Key() != next.Key() {
			if err := s.ensureClassKeyFree(ctx, exec, next.Key(), id); err != nil {
				return err
			}
		}
		next.CreatedAt = current.CreatedAt
		if next.CreatedBy == "" {
			next.CreatedBy = current.CreatedBy
			next.CreatedByName = current.CreatedByName
		}

		universe, err := s.repo.ListAll(ctx, exec)
		if err != nil {
			return storageError(err, "failed to load timetables")
		}
		if err := s.validateForStore(next, universe); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, next, current.Version); err != nil {
			return storageError(err, "failed to update timetable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return next, nil
}

// Delete removes a stored timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, nil, id); err != nil {
		return storageError(err, "failed to delete timetable")
	}
	s.invalidate(ctx)
	s.logger.Info("timetable deleted", zap.String("timetable_id", id))
	return nil
}

// Move relocates a placed block.
func (s *TimetableService) Move(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	var moved models.Entry
	tt, err := s.edit(ctx, id, req.Version, "move", func(tt *models.Timetable, editor *scheduler.Editor) error {
		entry, err := editor.Move(tt, blockID, models.Weekday(req.Day), *req.SlotIndex)
		moved = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt, Entry: &moved}, nil
}

// DeleteEntry moves a placed block to the removed pool.
func (s *TimetableService) DeleteEntry(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error) {
	var removed models.Entry
	tt, err := s.edit(ctx, id, version, "delete", func(tt *models.Timetable, editor *scheduler.Editor) error {
		entry, err := editor.Delete(tt, blockID)
		removed = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt, Entry: &removed}, nil
}

// Restore places a removed block back on the grid.
func (s *TimetableService) Restore(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	var restored models.Entry
	tt, err := s.edit(ctx, id, req.Version, "restore", func(tt *models.Timetable, editor *scheduler.Editor) error {
		entry, err := editor.Restore(tt, blockID, models.Weekday(req.Day), *req.SlotIndex)
		restored = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt, Entry: &restored}, nil
}

// Purge drops a removed block for good.
func (s *TimetableService) Purge(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error) {
	tt, err := s.edit(ctx, id, version, "purge", func(tt *models.Timetable, editor *scheduler.Editor) error {
		return editor.Purge(tt, blockID)
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt}, nil
}

// AddTemplate adds an ad-hoc requirement to the pool.
func (s *TimetableService) AddTemplate(ctx context.Context, id string, req dto.AddTemplateRequest) (*dto.EditResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	var added models.PoolTemplate
	tt, err := s.edit(ctx, id, req.Version, "add_template", func(tt *models.Timetable, editor *scheduler.Editor) error {
		template, err := editor.AddTemplate(tt, models.Requirement{
			ID:               req.BlockID,
			SubjectName:      strings.TrimSpace(req.SubjectName),
			TeacherName:      strings.TrimSpace(req.TeacherName),
			Type:             models.EntryType(req.Type),
			FrequencyPerWeek: req.FrequencyPerWeek,
			Duration:         req.Duration,
			Color:            req.Color,
		})
		added = template
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt, Template: &added}, nil
}

// RemoveTemplate drops a pool template.
func (s *TimetableService) RemoveTemplate(ctx context.Context, id, templateID string, version int) (*dto.EditResult, error) {
	tt, err := s.edit(ctx, id, version, "remove_template", func(tt *models.Timetable, editor *scheduler.Editor) error {
		return editor.RemoveTemplate(tt, templateID)
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt}, nil
}

// PlaceTemplate places one instance of a pool template.
func (s *TimetableService) PlaceTemplate(ctx context.Context, id, templateID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	var placed models.Entry
	tt, err := s.edit(ctx, id, req.Version, "place_template", func(tt *models.Timetable, editor *scheduler.Editor) error {
		entry, err := editor.PlaceTemplate(tt, templateID, models.Weekday(req.Day), *req.SlotIndex)
		placed = entry
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.EditResult{Timetable: tt, Entry: &placed}, nil
}

// Regenerate re-packs the constraint and pool derived entries of a timetable.
func (s *TimetableService) Regenerate(ctx context.Context, id string, req dto.RegenerateRequest) (*dto.TimetableResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regenerate payload")
	}
	var result scheduler.RegenerateResult
	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return storageError(err, "failed to load timetable")
		}
		if err := checkVersion(current, req.Version); err != nil {
			return err
		}
		universe, err := s.repo.ListAll(ctx, exec)
		if err != nil {
			return storageError(err, "failed to load timetables")
		}

		start := time.Now()
		result, err = scheduler.Regenerate(*current, universe, scheduler.RegenerateOptions{
			Attempts:   s.attempts(req.Attempts),
			Seed:       s.seed(req.Seed),
			NewBlockID: s.newBlockID,
		})
		if err != nil {
			return s.mapEditError(err)
		}
		s.metrics.ObserveSolverRun(result.Solve.Missing(), time.Since(start))

		if err := s.validateForStore(&result.Timetable, universe); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, &result.Timetable, current.Version); err != nil {
			return storageError(err, "failed to update timetable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	tt := result.Timetable
	report := generationReport(result.Solve, result.Fixed)
	if len(report.Warnings) > 0 {
		s.logger.Warn("timetable regenerated with shortfall",
			zap.String("timetable_id", tt.ID),
			zap.Int("missing", report.Missing),
			zap.Int64("seed", report.Seed),
		)
	} else {
		s.logger.Info("timetable regenerated",
			zap.String("timetable_id", tt.ID),
			zap.Int("placed", report.Placed),
			zap.Int("fixed", report.Fixed),
			zap.Int64("seed", report.Seed),
		)
	}
	return &dto.TimetableResult{Timetable: &tt, Generation: report}, nil
}

// TeacherSchedule lists every session of one teacher across all timetables.
func (s *TimetableService) TeacherSchedule(ctx context.Context, teacherName string) (*dto.TeacherScheduleResponse, error) {
	name := strings.TrimSpace(teacherName)
	if scheduler.NormalizeName(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherName is required")
	}
	key := TeacherKey(name)
	view := s.cache.View(ctx)
	var cached dto.TeacherScheduleResponse
	if view.Get(ctx, key, &cached) {
		return &cached, nil
	}

	all, err := s.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, storageError(err, "failed to load timetables")
	}
	rows := scheduler.TeacherSchedule(all, name)
	if rows == nil {
		rows = []models.TeacherScheduleRow{}
	}
	classes := make(map[string]string, len(rows))
	for _, row := range rows {
		classes[row.ID] = models.ClassKey{
			Department:  row.Department,
			CollegeYear: row.CollegeYear,
			Semester:    row.Semester,
			Division:    row.Division,
		}.String()
	}
	grid := buildGridResponse(name, scheduler.ScheduleEntries(rows, name), nil, func(entry models.Entry) string {
		return fmt.Sprintf("%s (%s)", entry.SubjectName, classes[entry.BlockID])
	})
	resp := &dto.TeacherScheduleResponse{TeacherName: name, Rows: rows, Grid: grid}
	view.Set(ctx, key, resp, s.cfg.CacheTTL)
	return resp, nil
}

// Grid renders one timetable as a day x slot grid.
func (s *TimetableService) Grid(ctx context.Context, id string) (*dto.GridResponse, error) {
	tt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lunch := tt.LunchSlotIndex
	return buildGridResponse(tt.Key().String(), tt.Entries, &lunch, func(entry models.Entry) string {
		return fmt.Sprintf("%s (%s)", entry.SubjectName, entry.TeacherName)
	}), nil
}

func (s *TimetableService) edit(ctx context.Context, id string, version int, op string, apply func(tt *models.Timetable, editor *scheduler.Editor) error) (*models.Timetable, error) {
	var edited *models.Timetable
	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return storageError(err, "failed to load timetable")
		}
		if err := checkVersion(current, version); err != nil {
			return err
		}
		universe, err := s.repo.ListAll(ctx, exec)
		if err != nil {
			return storageError(err, "failed to load timetables")
		}

		tt := current.Clone()
		if err := apply(&tt, scheduler.NewEditor(universe, s.newBlockID)); err != nil {
			s.logger.Info("timetable edit rejected",
				zap.String("timetable_id", id),
				zap.String("op", op),
				zap.Error(err),
			)
			return s.mapEditError(err)
		}
		if err := s.validateForStore(&tt, universe); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, &tt, current.Version); err != nil {
			return storageError(err, "failed to update timetable")
		}
		edited = &tt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return edited, nil
}

func (s *TimetableService) withTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) (err error) {
	if s.tx == nil {
		return fn(nil)
	}
	start := time.Now()
	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return storageError(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
		s.metrics.ObserveDBQuery("timetable_tx", time.Since(start))
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storageError(err, "failed to commit timetable transaction")
	}
	return nil
}

func (s *TimetableService) ensureClassKeyFree(ctx context.Context, exec sqlx.ExtContext, key models.ClassKey, selfID string) error {
	existing, err := s.repo.FindByClassKey(ctx, exec, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return storageError(err, "failed to check class key")
	}
	if existing != nil && existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrValidation, repository.ErrDuplicateClassKey.Error())
	}
	return nil
}

// validateForStore is the last step before any write.
func (s *TimetableService) validateForStore(tt *models.Timetable, universe []models.Timetable) error {
	if err := scheduler.ValidateEntries(*tt); err != nil {
		return s.mapEditError(err)
	}
	conflicts := scheduler.FindTeacherConflicts(*tt, universe)
	if len(conflicts) == 0 {
		return nil
	}
	s.metrics.RecordPlacementRejection(string(scheduler.ReasonTeacherConflict))
	s.logger.Info("timetable write rejected",
		zap.String("timetable_id", tt.ID),
		zap.Int("conflicts", len(conflicts)),
	)
	return appErrors.WithDetails(appErrors.ErrPlacementConflict, teacherConflictMessage,
		&models.TimetableConflictError{Message: teacherConflictMessage, Conflicts: conflicts})
}

func (s *TimetableService) mapEditError(err error) error {
	if pe, ok := scheduler.AsPlacementError(err); ok {
		s.metrics.RecordPlacementRejection(string(pe.Reason))
		return appErrors.WithDetails(appErrors.ErrPlacementConflict, pe.Error(), pe)
	}
	var reqErr *scheduler.RequirementError
	if errors.As(err, &reqErr) {
		return appErrors.WithDetails(appErrors.ErrValidation, reqErr.Error(), reqErr)
	}
	switch {
	case errors.Is(err, scheduler.ErrEntryNotFound),
		errors.Is(err, scheduler.ErrDeletedNotFound),
		errors.Is(err, scheduler.ErrTemplateNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, err.Error())
	case errors.Is(err, scheduler.ErrTemplateExhausted),
		errors.Is(err, scheduler.ErrDuplicateBlockID):
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return storageError(err, "failed to apply timetable edit")
}

func (s *TimetableService) solve(in scheduler.SolveInput) scheduler.SolveResult {
	start := time.Now()
	result := scheduler.Solve(in)
	s.metrics.ObserveSolverRun(result.Missing(), time.Since(start))
	if result.Partial() {
		s.logger.Warn("partial placement",
			zap.Int("placed", result.Placed),
			zap.Int("requested", result.Requested),
			zap.Int64("seed", result.Seed),
		)
	}
	return result
}

func (s *TimetableService) invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}

func (s *TimetableService) attempts(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.cfg.Attempts
}

func (s *TimetableService) seed(requested int64) int64 {
	if requested != 0 {
		return requested
	}
	return s.cfg.Seed
}

func (s *TimetableService) lunchSlot(requested *int) int {
	if requested != nil {
		return *requested
	}
	return s.cfg.DefaultLunchSlot
}

func (s *TimetableService) toRequirements(items []dto.RequirementRequest) []models.Requirement {
	reqs := make([]models.Requirement, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = s.newBlockID()
		}
		reqs = append(reqs, models.Requirement{
			ID:               id,
			SubjectName:      strings.TrimSpace(item.SubjectName),
			TeacherName:      strings.TrimSpace(item.TeacherName),
			Type:             models.EntryType(item.Type),
			FrequencyPerWeek: item.FrequencyPerWeek,
			Color:            item.Color,
		})
	}
	return reqs
}

func (s *TimetableService) fromSaveRequest(req dto.SaveTimetableRequest) *models.Timetable {
	tt := &models.Timetable{
		Department:     strings.TrimSpace(req.Department),
		CollegeYear:    req.CollegeYear,
		Semester:       req.Semester,
		Division:       strings.TrimSpace(req.Division),
		LunchSlotIndex: s.lunchSlot(req.LunchSlotIndex),
		Constraints:    s.toRequirements(req.Constraints),
		Entries:        s.toEntries(req.Entries),
		DeletedEntries: s.toEntries(req.DeletedEntries),
		AddedEntries:   make([]models.PoolTemplate, 0, len(req.AddedEntries)),
		CreatedBy:      req.CreatedBy,
		CreatedByName:  req.CreatedByName,
	}
	for i := range tt.DeletedEntries {
		tt.DeletedEntries[i].Day = ""
		tt.DeletedEntries[i].SlotIndex = 0
	}
	for _, item := range req.AddedEntries {
		entryType := models.EntryType(item.Type)
		duration := item.Duration
		if duration <= 0 {
			duration = models.DurationFor(entryType)
		}
		blockID := strings.TrimSpace(item.BlockID)
		if blockID == "" {
			blockID = s.newBlockID()
		}
		color := item.Color
		if color == "" {
			color = scheduler.ColorForLecture(item.SubjectName, entryType, item.TeacherName)
		}
		tt.AddedEntries = append(tt.AddedEntries, models.PoolTemplate{
			BlockID:          blockID,
			SubjectName:      strings.TrimSpace(item.SubjectName),
			TeacherName:      strings.TrimSpace(item.TeacherName),
			Type:             entryType,
			Duration:         duration,
			Color:            color,
			FrequencyPerWeek: item.FrequencyPerWeek,
		})
	}
	return tt
}

func (s *TimetableService) toEntries(items []dto.EntryRequest) []models.Entry {
	entries := make([]models.Entry, 0, len(items))
	for _, item := range items {
		entryType := models.EntryType(item.Type)
		duration := item.Duration
		if duration <= 0 {
			duration = models.DurationFor(entryType)
		}
		blockID := strings.TrimSpace(item.BlockID)
		if blockID == "" {
			blockID = s.newBlockID()
		}
		color := item.Color
		if color == "" {
			color = scheduler.ColorForLecture(item.SubjectName, entryType, item.TeacherName)
		}
		entries = append(entries, models.Entry{
			BlockID:     blockID,
			SubjectName: strings.TrimSpace(item.SubjectName),
			TeacherName: strings.TrimSpace(item.TeacherName),
			Type:        entryType,
			Duration:    duration,
			Color:       color,
			Day:         models.Weekday(item.Day),
			SlotIndex:   item.SlotIndex,
		})
	}
	return entries
}

func classKey(req dto.ClassKeyRequest) models.ClassKey {
	return models.ClassKey{
		Department:  strings.TrimSpace(req.Department),
		CollegeYear: req.CollegeYear,
		Semester:    req.Semester,
		Division:    strings.TrimSpace(req.Division),
	}
}

// validateClassKey enforces that the semester belongs to the college year (2y-1 or 2y).
func validateClassKey(req dto.ClassKeyRequest) error {
	if strings.TrimSpace(req.Department) == "" || strings.TrimSpace(req.Division) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "department and division are required")
	}
	if req.Semester != 2*req.CollegeYear-1 && req.Semester != 2*req.CollegeYear {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("semester %d does not belong to college year %d", req.Semester, req.CollegeYear))
	}
	return nil
}

func checkVersion(current *models.Timetable, expected int) error {
	if expected > 0 && current.Version != expected {
		return appErrors.Clone(appErrors.ErrConcurrentModification, "")
	}
	return nil
}

func storageError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	case errors.Is(err, repository.ErrVersionConflict), repository.IsSerializationFailure(err):
		return appErrors.Wrap(err, appErrors.ErrConcurrentModification.Code, appErrors.ErrConcurrentModification.Status, appErrors.ErrConcurrentModification.Message)
	case errors.Is(err, repository.ErrDuplicateClassKey):
		return appErrors.Clone(appErrors.ErrValidation, repository.ErrDuplicateClassKey.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func generationReport(result scheduler.SolveResult, fixed int) *dto.GenerationReport {
	report := &dto.GenerationReport{
		Requested:  result.Requested,
		Placed:     result.Placed,
		Missing:    result.Missing(),
		Fixed:      fixed,
		Seed:       result.Seed,
		Attempt:    result.Attempt,
		Attempts:   result.Attempts,
		Shortfalls: result.Shortfalls,
	}
	if result.Partial() {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("only %d of %d blocks could be placed; %d remain unplaced", result.Placed, result.Requested, result.Missing()))
		for _, item := range result.Shortfalls {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s (%s): %d of %d placed", item.SubjectName, item.TeacherName, item.Placed, item.Requested))
		}
	}
	return report
}
