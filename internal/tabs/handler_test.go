package tabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"decision-backend/internal/jobs"
	"decision-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth("test"))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Guest-Id", "tester")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTabEndpoints(t *testing.T) {
	jobsRepo := jobs.NewMemoryRepo()
	jobSvc := &jobs.Service{Repo: jobsRepo}
	tabSvc := NewService(NewMemoryRepo(), jobSvc)
	r := newTestRouter(tabSvc)

	seed := func(id, status string) {
		t.Helper()
		err := jobsRepo.Create(context.Background(), jobs.Job{
			ID: id, OwnerID: "guest:tester", ProjectID: "proj-1",
			Status: status, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seed("done", jobs.StatusCompleted)
	seed("running", jobs.StatusInProgress)

	if w := doRequest(r, http.MethodPost, "/api/v1/projects/proj-1/tabs/done/close"); w.Code != http.StatusOK {
		t.Fatalf("close done: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/projects/proj-1/tabs/running/close"); w.Code != http.StatusConflict {
		t.Errorf("close running: expected 409, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/projects/proj-1/tabs/nope/close"); w.Code != http.StatusNotFound {
		t.Errorf("close unknown: expected 404, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/projects/proj-1/tabs/closed")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "done") {
		t.Errorf("closed list: got %d %s", w.Code, w.Body.String())
	}

	if w := doRequest(r, http.MethodPost, "/api/v1/projects/proj-1/tabs/done/reopen"); w.Code != http.StatusOK {
		t.Errorf("reopen: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/api/v1/projects/proj-1/tabs/done"); w.Code != http.StatusOK {
		t.Errorf("purge: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/api/v1/projects/proj-1/tabs/done"); w.Code != http.StatusNotFound {
		t.Errorf("purge again: expected 404, got %d", w.Code)
	}
}
