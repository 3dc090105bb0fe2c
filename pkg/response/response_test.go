package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorCarriesMeta(t *testing.T) {
	c, w := newContext()
	err := appErrors.Wrap(errors.New("deadlock"), "SESSION_REBUILD_PARTIAL", http.StatusInternalServerError, "session history rebuild incomplete")

	Error(c, err, map[string]interface{}{"summary": map[string]int{"rows_parsed": 3}})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Meta map[string]map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SESSION_REBUILD_PARTIAL", body.Error.Code)
	assert.Equal(t, 3, body.Meta["summary"]["rows_parsed"])
	assert.Len(t, c.Errors, 1)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorFromPlainError(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "roster-20240101-000000.csv", "text/csv; charset=utf-8", []byte("ID\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="roster-20240101-000000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "ID\n", w.Body.String())
}
