package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nidoapp/nido-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, roles ...models.UserRole) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	c.Request = req
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	reached := false
	RequireRoles(roles...)(c)
	if !c.IsAborted() {
		reached = true
	}
	return w, reached
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	_, reached := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}, models.RoleAdmin, models.RoleTeacher)
	assert.True(t, reached)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	w, reached := performRBAC(t, nil, models.RoleAdmin)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesRejectsPendingAccount(t *testing.T) {
	w, reached := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RolePending}, models.RoleAdmin, models.RoleTeacher)
	assert.False(t, reached)
	require.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PENDING_APPROVAL", body.Error.Code)
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	w, reached := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}, models.RoleAdmin)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
