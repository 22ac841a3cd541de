package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
	"github.com/noah-isme/dept-timetable-api/internal/service"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type timetableStoreMock struct {
	createResult *dto.TimetableResult
	editErr      error
	updateErr    error

	capturedCreate    dto.CreateTimetableRequest
	capturedPlacement dto.PlacementRequest
	capturedBlockID   string
	capturedVersion   int
	capturedTeacher   string
	capturedKey       dto.ClassKeyRequest
}

func (m *timetableStoreMock) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	return []models.Timetable{{ID: "tt-1"}}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 1}, nil
}

func (m *timetableStoreMock) Get(ctx context.Context, id string) (*models.Timetable, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return &models.Timetable{ID: id}, nil
}

func (m *timetableStoreMock) GetByClassKey(ctx context.Context, req dto.ClassKeyRequest) (*models.Timetable, error) {
	m.capturedKey = req
	return &models.Timetable{ID: "tt-1", Department: req.Department}, nil
}

func (m *timetableStoreMock) Create(ctx context.Context, req dto.CreateTimetableRequest) (*dto.TimetableResult, error) {
	m.capturedCreate = req
	return m.createResult, nil
}

func (m *timetableStoreMock) Import(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	return &models.Timetable{ID: "tt-9"}, nil
}

func (m *timetableStoreMock) Update(ctx context.Context, id string, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.Timetable{ID: id}, nil
}

func (m *timetableStoreMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *timetableStoreMock) Grid(ctx context.Context, id string) (*dto.GridResponse, error) {
	return &dto.GridResponse{Title: "Computer Y2 S3 Div A"}, nil
}

func (m *timetableStoreMock) Regenerate(ctx context.Context, id string, req dto.RegenerateRequest) (*dto.TimetableResult, error) {
	return &dto.TimetableResult{Timetable: &models.Timetable{ID: id}, Generation: &dto.GenerationReport{Seed: req.Seed}}, nil
}

func (m *timetableStoreMock) edit(blockID string) (*dto.EditResult, error) {
	m.capturedBlockID = blockID
	if m.editErr != nil {
		return nil, m.editErr
	}
	return &dto.EditResult{Timetable: &models.Timetable{ID: "tt-1", Version: 4}}, nil
}

func (m *timetableStoreMock) Move(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	m.capturedPlacement = req
	return m.edit(blockID)
}

func (m *timetableStoreMock) DeleteEntry(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error) {
	m.capturedVersion = version
	return m.edit(blockID)
}

func (m *timetableStoreMock) Restore(ctx context.Context, id, blockID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	m.capturedPlacement = req
	return m.edit(blockID)
}

func (m *timetableStoreMock) Purge(ctx context.Context, id, blockID string, version int) (*dto.EditResult, error) {
	m.capturedVersion = version
	return m.edit(blockID)
}

func (m *timetableStoreMock) AddTemplate(ctx context.Context, id string, req dto.AddTemplateRequest) (*dto.EditResult, error) {
	return m.edit(req.BlockID)
}

func (m *timetableStoreMock) RemoveTemplate(ctx context.Context, id, templateID string, version int) (*dto.EditResult, error) {
	m.capturedVersion = version
	return m.edit(templateID)
}

func (m *timetableStoreMock) PlaceTemplate(ctx context.Context, id, templateID string, req dto.PlacementRequest) (*dto.EditResult, error) {
	m.capturedPlacement = req
	return m.edit(templateID)
}

func (m *timetableStoreMock) TeacherSchedule(ctx context.Context, teacherName string) (*dto.TeacherScheduleResponse, error) {
	m.capturedTeacher = teacherName
	return &dto.TeacherScheduleResponse{TeacherName: teacherName, Rows: []models.TeacherScheduleRow{}}, nil
}

type timetableExporterMock struct {
	format string
}

func (m *timetableExporterMock) ExportTimetable(ctx context.Context, id, format string) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "timetable.pdf", ContentType: "application/pdf", Payload: []byte("%PDF-")}, nil
}

func (m *timetableExporterMock) ExportTeacherSchedule(ctx context.Context, teacherName, format string) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "teacher.csv", ContentType: "text/csv", Payload: []byte("Time\n")}, nil
}

func newTimetableRouter(store *timetableStoreMock, exporter *timetableExporterMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &TimetableHandler{service: store, exporter: exporter}
	router := gin.New()
	group := router.Group("/api/v1")
	group.GET("/timetables", h.List)
	group.POST("/timetables", h.Create)
	group.POST("/timetables/import", h.Import)
	group.GET("/timetables/lookup", h.Lookup)
	group.GET("/timetables/:id", h.Get)
	group.PUT("/timetables/:id", h.Update)
	group.GET("/timetables/:id/export", h.Export)
	group.POST("/timetables/:id/regenerate", h.Regenerate)
	group.PATCH("/timetables/:id/entries/:blockId", h.MoveEntry)
	group.DELETE("/timetables/:id/entries/:blockId", h.DeleteEntry)
	group.POST("/timetables/:id/deleted/:blockId/restore", h.RestoreEntry)
	group.GET("/teachers/schedule", h.TeacherSchedule)
	return router
}

func serveTimetable(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelopeBody struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTimetableHandlerCreatePartialPlacement(t *testing.T) {
	store := &timetableStoreMock{createResult: &dto.TimetableResult{
		Timetable: &models.Timetable{ID: "tt-1"},
		Generation: &dto.GenerationReport{
			Requested: 50,
			Placed:    35,
			Missing:   15,
			Warnings:  []string{"only 35 of 50 blocks could be placed; 15 remain unplaced"},
		},
	}}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPost, "/api/v1/timetables", []byte(`{
		"department":"Computer","collegeYear":2,"semester":3,"division":"A","lunchSlotIndex":4,
		"constraints":[{"subjectName":"Math","teacherName":"TeacherA","type":"SUBJECT","frequencyPerWeek":50}]
	}`))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	require.Contains(t, body.Meta, "warnings")
	assert.Equal(t, "Computer", store.capturedCreate.Department)
	require.NotNil(t, store.capturedCreate.LunchSlotIndex)
	assert.Equal(t, 4, *store.capturedCreate.LunchSlotIndex)
	assert.Equal(t, 50, store.capturedCreate.Constraints[0].FrequencyPerWeek)
}

func TestTimetableHandlerCreateInvalidJSON(t *testing.T) {
	router := newTimetableRouter(&timetableStoreMock{}, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPost, "/api/v1/timetables", []byte(`{"department":`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestTimetableHandlerMoveConflict(t *testing.T) {
	pe := &scheduler.PlacementError{Reason: scheduler.ReasonLunchSlot, Day: models.Monday, SlotIndex: 3, Duration: 1}
	store := &timetableStoreMock{editErr: appErrors.WithDetails(appErrors.ErrPlacementConflict, pe.Error(), pe)}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPatch, "/api/v1/timetables/tt-1/entries/b1", []byte(`{"day":"Monday","slotIndex":3,"version":2}`))

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "PLACEMENT_CONFLICT", body.Error.Code)
	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "LUNCH_SLOT", details["reason"])
	assert.Equal(t, "b1", store.capturedBlockID)
	assert.Equal(t, 2, store.capturedPlacement.Version)
	require.NotNil(t, store.capturedPlacement.SlotIndex)
	assert.Equal(t, 3, *store.capturedPlacement.SlotIndex)
}

func TestTimetableHandlerUpdateTeacherConflictPayload(t *testing.T) {
	conflicts := []models.TeacherConflict{{
		TeacherName: "TeacherB",
		Day:         models.Wednesday,
		SlotIndex:   0,
		Duration:    2,
		ConflictWith: models.ConflictInfo{
			TimetableID: "tt-2", Department: "Civil", CollegeYear: 1, Semester: 1, Division: "B",
			SubjectName: "Drawing", SlotIndex: 1, Duration: 1,
		},
	}}
	store := &timetableStoreMock{updateErr: appErrors.WithDetails(appErrors.ErrPlacementConflict, "teacher conflict",
		&models.TimetableConflictError{Message: "teacher conflict", Conflicts: conflicts})}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPut, "/api/v1/timetables/tt-1", []byte(`{"department":"Computer","collegeYear":2,"semester":3,"division":"A"}`))

	require.Equal(t, http.StatusConflict, w.Code)
	var raw struct {
		Error struct {
			Details models.TimetableConflictError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Error.Details.Conflicts, 1)
	assert.Equal(t, conflicts[0], raw.Error.Details.Conflicts[0])
}

func TestTimetableHandlerDeleteEntryVersion(t *testing.T) {
	store := &timetableStoreMock{}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodDelete, "/api/v1/timetables/tt-1/entries/b2?version=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serveTimetable(router, http.MethodDelete, "/api/v1/timetables/tt-1/entries/b2?version=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, store.capturedVersion)
	assert.Equal(t, "b2", store.capturedBlockID)
}

func TestTimetableHandlerRestoreRequiresSlot(t *testing.T) {
	store := &timetableStoreMock{}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPost, "/api/v1/timetables/tt-1/deleted/d1/restore", []byte(`{"day":"Friday","slotIndex":0}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.capturedPlacement.SlotIndex)
	assert.Equal(t, 0, *store.capturedPlacement.SlotIndex)
}

func TestTimetableHandlerRegenerateWithoutBody(t *testing.T) {
	router := newTimetableRouter(&timetableStoreMock{}, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodPost, "/api/v1/timetables/tt-1/regenerate", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeEnvelope(t, w).Meta)
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	router := newTimetableRouter(&timetableStoreMock{}, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodGet, "/api/v1/timetables/missing", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerLookupBindsQuery(t *testing.T) {
	store := &timetableStoreMock{}
	router := newTimetableRouter(store, &timetableExporterMock{})

	w := serveTimetable(router, http.MethodGet, "/api/v1/timetables/lookup?department=Computer&collegeYear=2&semester=3&division=A", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ClassKeyRequest{Department: "Computer", CollegeYear: 2, Semester: 3, Division: "A"}, store.capturedKey)
}

func TestTimetableHandlerExports(t *testing.T) {
	store := &timetableStoreMock{}
	exporter := &timetableExporterMock{}
	router := newTimetableRouter(store, exporter)

	w := serveTimetable(router, http.MethodGet, "/api/v1/timetables/tt-1/export?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable.pdf")
	assert.Equal(t, "pdf", exporter.format)

	w = serveTimetable(router, http.MethodGet, "/api/v1/teachers/schedule?teacherName=TeacherA&format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "teacher.csv")
	assert.Equal(t, "csv", exporter.format)

	w = serveTimetable(router, http.MethodGet, "/api/v1/teachers/schedule?teacherName=TeacherA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TeacherA", store.capturedTeacher)
}
