package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/catalog/application"
	"github.com/jivitsolutions/jivit-site/catalog/repository"
	"github.com/jivitsolutions/jivit-site/core/database"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	"github.com/jivitsolutions/jivit-site/ui/rest/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.NewMemoryDatabase(uuid.NewString())
	require.NoError(t, err)

	c := application.NewCatalog(application.Repositories{
		Services: repository.NewServiceGormRepository(db),
		Jobs:     repository.NewJobGormRepository(db),
		Programs: repository.NewProgramGormRepository(db),
		Blogs:    repository.NewBlogGormRepository(db),
	}, cache.NewTiers(cache.TierOptions{}, nil), auditDomain.NopRecorder{})
	require.NoError(t, c.InitSchema(context.Background()))

	app := fiber.New()
	app.Use(middleware.Recovery())
	admin := app.Group("/api/admin", middleware.Actor())
	InitRestCatalog(app.Group("/api/public"), admin, c)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-User", "admin")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCatalogRoutes_CreateThenPublicRead(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodPost, "/api/admin/services", map[string]any{
		"title":       "Cloud Migration",
		"description": "Move to the cloud",
		"category":    "Cloud",
		"status":      "published",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var created struct {
		ID        string `json:"id"`
		CreatedBy string `json:"created_by"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &created))
	assert.Equal(t, "admin", created.CreatedBy)

	status, env = do(t, app, http.MethodGet, "/api/public/services", nil)
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Results, &list))
	assert.Len(t, list, 1)

	status, _ = do(t, app, http.MethodGet, "/api/public/services/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCatalogRoutes_ValidationAndNotFound(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodPost, "/api/admin/jobs", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	status, env = do(t, app, http.MethodGet, "/api/public/jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND_ERROR", env.Code)

	status, _ = do(t, app, http.MethodDelete, "/api/admin/jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCatalogRoutes_UpdateAndBlogSlug(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodPost, "/api/admin/blogs", map[string]any{
		"title":   "Kubernetes in 5 minutes",
		"content": "<p>Pods, services and deployments.</p>",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var post struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &post))
	assert.Equal(t, "kubernetes-in-5-minutes", post.Slug)

	status, _ = do(t, app, http.MethodGet, "/api/public/blogs/"+post.Slug, nil)
	assert.Equal(t, http.StatusNotFound, status, "drafts are hidden")

	status, env = do(t, app, http.MethodPut, "/api/admin/blogs/"+post.ID, map[string]any{"status": "published"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = do(t, app, http.MethodGet, "/api/public/blogs/"+post.Slug, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Results), "Pods, services and deployments.")
}

func TestCatalogRoutes_AdminListIncludesDrafts(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/admin/programs", map[string]any{
		"title":       "Summer Internship",
		"category":    "Internship",
		"description": "Twelve weeks",
	})
	require.Equal(t, http.StatusCreated, status)

	_, env := do(t, app, http.MethodGet, "/api/admin/programs", nil)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Results, &list))
	assert.Len(t, list, 1)

	_, env = do(t, app, http.MethodGet, "/api/public/programs", nil)
	list = nil
	require.NoError(t, json.Unmarshal(env.Results, &list))
	assert.Empty(t, list)
}
