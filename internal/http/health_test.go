package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/database"
)

func healthStatus(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr.Code, resp
}

func TestHealth_DatabaseDown(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	code, resp := healthStatus(t, NewHealthController(db, "1.0"))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "error", resp.Checks["database"])
}

func TestHealth_NoDatabase(t *testing.T) {
	code, resp := healthStatus(t, NewHealthController(nil, ""))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "not configured", resp.Checks["database"])
	assert.NotEmpty(t, resp.Time)
}
