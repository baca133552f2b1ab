package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "userhub/internal/application"
	"userhub/internal/infrastructure/memory"
	"userhub/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

func newTestRouter() *gin.Engine {
	repo := memory.NewUserRepository()
	svc := userapp.NewService(repo, nil, nil, nil, "", nil, 0)
	h := NewUserHandler(svc, nil)

	r := gin.New()
	users := r.Group("/api/v1/users")
	users.GET("", h.List)
	users.GET("/search", h.Search)
	users.GET("/:id", h.GetByID)
	users.POST("", h.Create)
	users.PUT("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, r *gin.Engine, username, email string) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{
		"username": username,
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestCreateReturns201WithoutPassword(t *testing.T) {
	r := newTestRouter()

	view := createUser(t, r, "alice", "alice@x.com")
	assert.NotZero(t, view["id"])
	assert.Equal(t, true, view["active"])
	assert.NotContains(t, view, "password")
	assert.NotContains(t, view, "passwordHash")
}

func TestCreateDuplicateUsernameReturns409(t *testing.T) {
	r := newTestRouter()
	createUser(t, r, "alice", "alice@x.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{
		"username": "alice",
		"email":    "bob@x.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, float64(http.StatusConflict), payload["status"])
	assert.Equal(t, "Resource Already Exists", payload["error"])
	assert.Contains(t, payload["message"], "username alice")
	assert.Equal(t, "/api/v1/users", payload["path"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestCreateValidationFailureReturns400(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{
		"username": "alice",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload struct {
		Error            string `json:"error"`
		ValidationErrors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"validationErrors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Validation Error", payload.Error)

	fields := make([]string, 0, len(payload.ValidationErrors))
	for _, fe := range payload.ValidationErrors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestGetByIDMissingReturns404(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/99", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Resource Not Found", payload["error"])
	assert.Contains(t, payload["message"], "99")
}

func TestGetByIDBadPathParamReturns400(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Bad Request", payload["error"])
}

func TestUpdateReturns202AndPreservesCreatedAt(t *testing.T) {
	r := newTestRouter()
	view := createUser(t, r, "alice", "alice@x.com")
	id := int64(view["id"].(float64))

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), gin.H{
		"username":  "alice2",
		"email":     "alice2@x.com",
		"firstName": "Alicia",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "alice2", updated["username"])
	assert.Equal(t, view["createdAt"], updated["createdAt"])
	assert.NotEqual(t, view["updatedAt"], updated["updatedAt"])
}

func TestUpdateMissingReturns404(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPut, "/api/v1/users/42", gin.H{
		"username": "ghost",
		"email":    "ghost@x.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteIsSoftAndReturns204(t *testing.T) {
	r := newTestRouter()
	view := createUser(t, r, "alice", "alice@x.com")
	id := int64(view["id"].(float64))

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, false, fetched["active"])
}

func TestDeleteMissingReturns404(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodDelete, "/api/v1/users/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBogusDirectionStillOK(t *testing.T) {
	r := newTestRouter()
	createUser(t, r, "alice", "alice@x.com")
	createUser(t, r, "bob", "bob@x.com")

	w := doJSON(t, r, http.MethodGet, "/api/v1/users?page=0&size=10&sortBy=id&direction=bogus", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "bogus", page["direction"])
	assert.Equal(t, float64(0), page["currentPage"])
	assert.Equal(t, float64(2), page["totalItems"])
	assert.Equal(t, float64(1), page["totalPages"])
	assert.Equal(t, true, page["first"])
	assert.Equal(t, true, page["last"])
	assert.Len(t, page["content"], 2)
}

func TestListDefaults(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, float64(10), page["size"])
	assert.Equal(t, "id", page["sort"])
	assert.Equal(t, "asc", page["direction"])
}

func TestListBadSizeReturns400(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/users?size=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users?page=notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchWithoutESReturnsEmpty(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/search?q=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Len(t, payload["results"], 0)
}
