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

type announcementServiceMock struct {
	latestResp    *models.Announcement
	latestErr     error
	publishResp   *models.Announcement
	publishErr    error
	clearErr      error
	lastPublished service.PublishAnnouncementRequest
	publishCalled bool
	clearCalled   bool
}

func (m *announcementServiceMock) Latest(ctx context.Context) (*models.Announcement, error) {
	return m.latestResp, m.latestErr
}

func (m *announcementServiceMock) Publish(ctx context.Context, req service.PublishAnnouncementRequest) (*models.Announcement, error) {
	m.publishCalled = true
	m.lastPublished = req
	return m.publishResp, m.publishErr
}

func (m *announcementServiceMock) Clear(ctx context.Context) error {
	m.clearCalled = true
	return m.clearErr
}

func TestAnnouncementHandlerLatestEmptySlot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnnouncementHandler(&announcementServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/announcement", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Latest(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data *models.Announcement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
}

func TestAnnouncementHandlerPublish(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{
		publishResp: &models.Announcement{ID: "a1", Title: "Acto de fin de año", Message: "Viernes a las 10"},
	}
	handler := NewAnnouncementHandler(mockSvc)

	payload, _ := json.Marshal(service.PublishAnnouncementRequest{Title: "Acto de fin de año", Message: "Viernes a las 10"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/announcement", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Publish(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.publishCalled)
	assert.Equal(t, "Acto de fin de año", mockSvc.lastPublished.Title)
}

func TestAnnouncementHandlerPublishInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/announcement", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Publish(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.publishCalled)
}

func TestAnnouncementHandlerPublishServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{publishErr: appErrors.Clone(appErrors.ErrValidation, "a title and message are required")}
	handler := NewAnnouncementHandler(mockSvc)

	payload, _ := json.Marshal(service.PublishAnnouncementRequest{Title: "   "})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/announcement", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Publish(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnnouncementHandlerClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/announcement", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Clear(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.clearCalled)
}
