package article

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	r := gin.New()
	NewHandler(NewService(store, nil)).RegisterRoutes(r.Group("/api/v1"))
	return r, store
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const createBody = `{
	"title": "Clinic Wait Times",
	"category": "REPORT",
	"blocks": [
		{"type": "lead", "text": "Queues are growing."},
		{"type": "divider"}
	]
}`

func TestHandlerCreateAndConflict(t *testing.T) {
	r, store := newTestHandler(t)

	w := do(r, http.MethodPost, "/api/v1/articles", createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "clinic-wait-times", created.Slug)
	assert.Len(t, store.items, 1)

	w = do(r, http.MethodPost, "/api/v1/articles", createBody)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandlerRejectsBadBlocks(t *testing.T) {
	r, store := newTestHandler(t)

	w := do(r, http.MethodPost, "/api/v1/articles", `{"title":"x","blocks":[{"type":"marquee"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/api/v1/articles", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.items)
}

func TestHandlerBlockEditing(t *testing.T) {
	r, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/articles", createBody).Code)

	w := do(r, http.MethodPost, "/api/v1/articles/clinic-wait-times/blocks", `{"type":"heading"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPatch, "/api/v1/articles/clinic-wait-times/blocks/2", `{"text":"Findings"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/articles/clinic-wait-times/blocks/2/move", `{"to":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var a Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	require.Len(t, a.Blocks, 3)
	assert.Equal(t, block.TypeHeading, a.Blocks[0].Type)

	w = do(r, http.MethodDelete, "/api/v1/articles/clinic-wait-times/blocks/9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/articles/clinic-wait-times/blocks/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerPublicListingAndDelete(t *testing.T) {
	r, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/articles", createBody).Code)

	w := do(r, http.MethodGet, "/api/v1/public/articles/latest?n=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"clinic-wait-times"`)
	assert.NotContains(t, w.Body.String(), `"blocks"`)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/articles?slug=clinic-wait-times", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/articles/clinic-wait-times", "").Code)
}
