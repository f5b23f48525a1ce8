package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.Invalid("amount is required"), http.StatusBadRequest},
		{utils.ErrorBaseRequired, http.StatusBadRequest},
		{utils.Duplicate("duplicate name"), http.StatusConflict},
		{utils.Conflict("store has transactions"), http.StatusConflict},
		{fmt.Errorf("save: %w", utils.NotFound("store not found")), http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{utils.Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{utils.Forbidden("no access"), http.StatusForbidden},
		{sql.ErrConnDone, http.StatusInternalServerError},
		{fmt.Errorf("query stores: %w", sql.ErrConnDone), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesServerFaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/stores", nil)
	respondError(c, fmt.Errorf("query stores: %w", sql.ErrConnDone))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, w.Body.String(), "connection")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/closings", nil)
	respondError(c, utils.Invalidf("item %d: discount cannot exceed amount", 1))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "item 1: discount cannot exceed amount")
}
