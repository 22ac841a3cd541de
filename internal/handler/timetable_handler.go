package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/service"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
	"github.com/noah-isme/dept-timetable-api/pkg/response"
)

type timetableStore interface {
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Timetable, error)
	GetByClassKey(ctx context.Context, req dto.ClassKeyRequest) (*models.Timetable, error)
	Create(ctx context.Context, req dto.CreateTimetableRequest) (*dto.TimetableResult, error)
	Import(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error)
	Update(ctx context.Context, id string, req dto.SaveTimetableRequest) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	Grid(ctx context.Context, id string) (*dto.GridResponse, error)
	Regenerate(ctx context.Context, id string, req dto.RegenerateRequest) (*dto.TimetableResult, error)
	Move(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error)
	DeleteEntry(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error)
	Restore(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error)
	Purge(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error)
	AddTemplate(ctx context.Context, id string, req dto.AddTemplateRequest) (*dto.EditResult, error)
	RemoveTemplate(ctx context.Context, id, templateID string, version int) (*dto.EditResult, error)
	PlaceTemplate(ctx context.Context, id, templateID string, req dto.PlacementRequest) (*dto.EditResult, error)
	TeacherSchedule(ctx context.Context, teacherName string) (*dto.TeacherScheduleResponse, error)
}

type timetableExporter interface {
	ExportTimetable(ctx context.Context, id, format string) (*service.ExportFile, error)
	ExportTeacherSchedule(ctx context.Context, teacherName, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes the timetable store, edit and export endpoints.
type TimetableHandler struct {
	service  timetableStore
	exporter timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, exporter *service.TimetableExportService) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param department query string false "Department"
// @Param collegeYear query int false "College year"
// @Param semester query int false "Semester"
// @Param division query string false "Division"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create a class timetable and auto-generate its entries
// @Description Partial placements succeed; meta.warnings lists what could not be placed.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil, generationMeta(result.Generation))
}

// Import godoc
// @Summary Store a timetable with explicit entries
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/import [post]
func (h *TimetableHandler) Import(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	tt, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tt)
}

// Lookup godoc
// @Summary Find the timetable of a class
// @Tags Timetables
// @Produce json
// @Param department query string true "Department"
// @Param collegeYear query int true "College year"
// @Param semester query int true "Semester"
// @Param division query string true "Division"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/lookup [get]
func (h *TimetableHandler) Lookup(c *gin.Context) {
	var req dto.ClassKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class key"))
		return
	}
	tt, err := h.service.GetByClassKey(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Get godoc
// @Summary Get timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	tt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Update godoc
// @Summary Replace a timetable
// @Description Teacher double-bookings against other timetables are rejected with 409 and the conflict list.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.SaveTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	tt, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Delete godoc
// @Summary Delete timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Grid godoc
// @Summary Render a timetable as a day x slot grid
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Export godoc
// @Summary Download a timetable grid
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.exporter.ExportTimetable(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}

// Regenerate godoc
// @Summary Re-pack constraint and pool entries around fixed entries
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.RegenerateRequest false "Regenerate options"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/regenerate [post]
func (h *TimetableHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid regenerate payload"))
			return
		}
	}
	result, err := h.service.Regenerate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, generationMeta(result.Generation))
}

// MoveEntry godoc
// @Summary Move a placed block
// @Tags Timetable Edits
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Block ID"
// @Param payload body dto.PlacementRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id}/entries/{blockId} [patch]
func (h *TimetableHandler) MoveEntry(c *gin.Context) {
	req, ok := bindPlacement(c)
	if !ok {
		return
	}
	result, err := h.service.Move(c.Request.Context(), c.Param("id"), c.Param("blockId"), req)
	respondEdit(c, result, err)
}

// DeleteEntry godoc
// @Summary Move a placed block to the removed pool
// @Tags Timetable Edits
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Block ID"
// @Param version query int false "Expected version"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/entries/{blockId} [delete]
func (h *TimetableHandler) DeleteEntry(c *gin.Context) {
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	result, err := h.service.DeleteEntry(c.Request.Context(), c.Param("id"), c.Param("blockId"), version)
	respondEdit(c, result, err)
}

// RestoreEntry godoc
// @Summary Restore a removed block
// @Tags Timetable Edits
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Removed block ID"
// @Param payload body dto.PlacementRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id}/deleted/{blockId}/restore [post]
func (h *TimetableHandler) RestoreEntry(c *gin.Context) {
	req, ok := bindPlacement(c)
	if !ok {
		return
	}
	result, err := h.service.Restore(c.Request.Context(), c.Param("id"), c.Param("blockId"), req)
	respondEdit(c, result, err)
}

// PurgeEntry godoc
// @Summary Permanently drop a removed block
// @Tags Timetable Edits
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Removed block ID"
// @Param version query int false "Expected version"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/deleted/{blockId} [delete]
func (h *TimetableHandler) PurgeEntry(c *gin.Context) {
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	result, err := h.service.Purge(c.Request.Context(), c.Param("id"), c.Param("blockId"), version)
	respondEdit(c, result, err)
}

// AddTemplate godoc
// @Summary Add an ad-hoc template to the pool
// @Tags Timetable Edits
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.AddTemplateRequest true "Template"
// @Success 201 {object} response.Envelope
// @Router /timetables/{id}/templates [post]
func (h *TimetableHandler) AddTemplate(c *gin.Context) {
	var req dto.AddTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	result, err := h.service.AddTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveTemplate godoc
// @Summary Remove a pool template
// @Tags Timetable Edits
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Template ID"
// @Param version query int false "Expected version"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/templates/{blockId} [delete]
func (h *TimetableHandler) RemoveTemplate(c *gin.Context) {
	version, ok := versionQuery(c)
	if !ok {
		return
	}
	result, err := h.service.RemoveTemplate(c.Request.Context(), c.Param("id"), c.Param("blockId"), version)
	respondEdit(c, result, err)
}

// PlaceTemplate godoc
// @Summary Place one instance of a pool template
// @Tags Timetable Edits
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param blockId path string true "Template ID"
// @Param payload body dto.PlacementRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id}/templates/{blockId}/place [post]
func (h *TimetableHandler) PlaceTemplate(c *gin.Context) {
	req, ok := bindPlacement(c)
	if !ok {
		return
	}
	result, err := h.service.PlaceTemplate(c.Request.Context(), c.Param("id"), c.Param("blockId"), req)
	respondEdit(c, result, err)
}

// TeacherSchedule godoc
// @Summary Personal schedule of one teacher across all timetables
// @Tags Teachers
// @Produce json
// @Param teacherName query string true "Teacher name"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /teachers/schedule [get]
func (h *TimetableHandler) TeacherSchedule(c *gin.Context) {
	var query dto.TeacherScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	if query.Format == service.ExportFormatCSV || query.Format == service.ExportFormatPDF {
		file, err := h.exporter.ExportTeacherSchedule(c.Request.Context(), query.TeacherName, query.Format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, file.Filename, file.ContentType, file.Payload)
		return
	}
	schedule, err := h.service.TeacherSchedule(c.Request.Context(), query.TeacherName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

func bindPlacement(c *gin.Context) (dto.PlacementRequest, bool) {
	var req dto.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid placement payload"))
		return req, false
	}
	return req, true
}

func versionQuery(c *gin.Context) (int, bool) {
	raw := c.Query("version")
	if raw == "" {
		return 0, true
	}
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version must be a positive integer"))
		return 0, false
	}
	return version, true
}

func respondEdit(c *gin.Context, result *dto.EditResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func generationMeta(report *dto.GenerationReport) map[string]interface{} {
	if report == nil || len(report.Warnings) == 0 {
		return nil
	}
	return map[string]interface{}{
		"warnings":   report.Warnings,
		"shortfalls": report.Shortfalls,
	}
}

