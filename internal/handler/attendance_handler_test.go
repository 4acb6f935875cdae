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

	"github.com/nidoapp/nido-api/internal/middleware"
	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/internal/service"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type attendanceServiceMock struct {
	recordErr    error
	historyResp  []models.AttendanceHistoryRow
	historyErr   error
	exportResp   *service.ExportResult
	exportErr    error
	lastRecord   service.RecordAttendanceRequest
	lastFormat   service.ExportFormat
	recordCalled bool
}

func (m *attendanceServiceMock) Record(ctx context.Context, req service.RecordAttendanceRequest) error {
	m.recordCalled = true
	m.lastRecord = req
	return m.recordErr
}

func (m *attendanceServiceMock) History(ctx context.Context) ([]models.AttendanceHistoryRow, error) {
	return m.historyResp, m.historyErr
}

func (m *attendanceServiceMock) ExportHistory(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.exportResp, m.exportErr
}

func newAttendanceContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	return c, w
}

func TestAttendanceHandlerRecord(t *testing.T) {
	mockSvc := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mockSvc)

	payload, _ := json.Marshal(service.RecordAttendanceRequest{
		GroupID: "group-1",
		Records: []service.AttendanceRecordInput{
			{StudentID: "student-1", Status: models.AttendanceStatusPresent},
			{StudentID: "student-2", Status: models.AttendanceStatusAbsent},
		},
	})
	c, w := newAttendanceContext(t, http.MethodPost, "/attendance", payload)

	handler.Record(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.recordCalled)
	assert.Equal(t, "group-1", mockSvc.lastRecord.GroupID)
	assert.Len(t, mockSvc.lastRecord.Records, 2)
}

func TestAttendanceHandlerRecordInvalidBody(t *testing.T) {
	mockSvc := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newAttendanceContext(t, http.MethodPost, "/attendance", []byte(`{"groupId":`))

	handler.Record(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.recordCalled)
}

func TestAttendanceHandlerRecordUnknownGroup(t *testing.T) {
	mockSvc := &attendanceServiceMock{recordErr: appErrors.Clone(appErrors.ErrNotFound, "group not found")}
	handler := NewAttendanceHandler(mockSvc)

	payload, _ := json.Marshal(service.RecordAttendanceRequest{
		GroupID: "ghost",
		Records: []service.AttendanceRecordInput{{StudentID: "student-1", Status: models.AttendanceStatusPresent}},
	})
	c, w := newAttendanceContext(t, http.MethodPost, "/attendance", payload)

	handler.Record(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceHandlerHistory(t *testing.T) {
	mockSvc := &attendanceServiceMock{
		historyResp: []models.AttendanceHistoryRow{{StudentName: "Ana"}},
	}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newAttendanceContext(t, http.MethodGet, "/attendance/history", nil)

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.AttendanceHistoryRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Ana", body.Data[0].StudentName)
}

func TestAttendanceHandlerExportHistory(t *testing.T) {
	mockSvc := &attendanceServiceMock{
		exportResp: &service.ExportResult{
			Content:     []byte("Date,Group,Student,Status\n"),
			ContentType: "text/csv",
			Filename:    "attendance-20260302.csv",
		},
	}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newAttendanceContext(t, http.MethodGet, "/attendance/history/export?format=csv", nil)

	handler.ExportHistory(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, mockSvc.lastFormat)
	assert.Equal(t, `attachment; filename="attendance-20260302.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Date,Group,Student,Status")
}

func TestAttendanceHandlerExportHistoryUnknownFormat(t *testing.T) {
	mockSvc := &attendanceServiceMock{exportErr: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newAttendanceContext(t, http.MethodGet, "/attendance/history/export?format=xml", nil)

	handler.ExportHistory(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ExportFormat("xml"), mockSvc.lastFormat)
}
