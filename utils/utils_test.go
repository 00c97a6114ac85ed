package utils

import (
	"auction-marketplace/internal/biddingerrors"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestGenerateID(t *testing.T) {
	t.Parallel()

	a, b := GenerateID(), GenerateID()
	require.NotEqual(t, a, b)
	require.True(t, IsValidID(a))
	require.False(t, IsValidID("item1"))
	require.False(t, IsValidID(""))
}

func TestSetLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, SetLevel("debug"))
	require.Equal(t, log.DebugLevel, log.GetLevel())
	require.Error(t, SetLevel("loud"))
	require.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	JSONError(c, http.StatusNotFound, fmt.Errorf("service: %w", biddingerrors.ErrItemNotFound), "Item not found")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, float64(http.StatusNotFound), body["status"])
	require.Equal(t, "Item not found", body["message"])
	require.Equal(t, "not_found", body["kind"])
	require.Equal(t, "service: item not found", body["error"])
}

func TestAbortWithError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	AbortWithError(c, http.StatusUnauthorized, biddingerrors.ErrInvalidToken, "Unauthorized")

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), `"kind":"authentication_error"`)
}
