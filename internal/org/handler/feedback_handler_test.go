package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/service"
	"github.com/oticonnect/backend/internal/org/testutil"
	"gorm.io/gorm"
)

func setupFeedbackTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewFeedbackService(repos.Feedback)
	h := NewFeedbackHandler(svc)

	router := testutil.SetupRouter()
	// Intake is public; triage sits behind auth.
	router.POST("/api/feedback", h.Create)
	api := testutil.AuthGroup(router, "/api")
	api.GET("/feedback", h.List)
	api.GET("/feedback/:id", h.Get)
	api.PUT("/feedback/:id/status", h.UpdateStatus)
	api.POST("/feedback/:id/respond", h.Respond)
	api.DELETE("/feedback/:id", h.Delete)

	return router, db
}

func TestCreateFeedbackAnonymous(t *testing.T) {
	router, db := setupFeedbackTest(t)

	// No token at all.
	w := testutil.DoRequest(router, "POST", "/api/feedback", map[string]interface{}{
		"message":  "the coffee machine is broken again",
		"category": entity.FeedbackCategoryComplaint,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.Feedback
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("load feedback: %v", err)
	}
	if got.Status != entity.FeedbackStatusUnread {
		t.Errorf("status = %q, want unread", got.Status)
	}
	if got.Priority != entity.PriorityMedium {
		t.Errorf("priority = %q, want default medium", got.Priority)
	}
}

func TestCreateFeedbackRejectsUnknownCategory(t *testing.T) {
	router, _ := setupFeedbackTest(t)

	w := testutil.DoRequest(router, "POST", "/api/feedback", map[string]interface{}{
		"message":  "hello",
		"category": "rant",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestFeedbackTriageAdminOnly(t *testing.T) {
	router, db := setupFeedbackTest(t)
	fb := &entity.Feedback{
		ID:       "fb-1",
		Message:  "more remote days please",
		Category: entity.FeedbackCategorySuggestion,
		Status:   entity.FeedbackStatusUnread,
		Priority: entity.PriorityMedium,
	}
	if err := db.Create(fb).Error; err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	w := testutil.DoRequest(router, "GET", "/api/feedback", nil, testutil.MemberToken("user-m"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("member list: status = %d, want 403", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/feedback", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: status = %d: %s", w.Code, w.Body.String())
	}
}

func TestFeedbackRespondResolves(t *testing.T) {
	router, db := setupFeedbackTest(t)
	fb := &entity.Feedback{
		ID:       "fb-2",
		Message:  "parking lot lights are out",
		Category: entity.FeedbackCategoryGrievance,
		Status:   entity.FeedbackStatusInProgress,
		Priority: entity.PriorityHigh,
	}
	if err := db.Create(fb).Error; err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	w := testutil.DoRequest(router, "POST", "/api/feedback/"+fb.ID+"/respond", map[string]interface{}{
		"response": "facilities notified, fix scheduled",
	}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.Feedback
	db.First(&got, "id = ?", fb.ID)
	if got.Status != entity.FeedbackStatusResolved {
		t.Errorf("status = %q, want resolved", got.Status)
	}
	if got.Response == "" || got.RespondedBy == "" || got.RespondedAt == nil {
		t.Error("response stamps missing")
	}
}

func TestFeedbackStatusUpdateRejectsUnknownStatus(t *testing.T) {
	router, db := setupFeedbackTest(t)
	fb := &entity.Feedback{
		ID:       "fb-3",
		Message:  "anything",
		Category: entity.FeedbackCategoryOther,
		Status:   entity.FeedbackStatusUnread,
		Priority: entity.PriorityLow,
	}
	if err := db.Create(fb).Error; err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	w := testutil.DoRequest(router, "PUT", "/api/feedback/"+fb.ID+"/status", map[string]interface{}{
		"status": "archived",
	}, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var got entity.Feedback
	db.First(&got, "id = ?", fb.ID)
	if got.Status != entity.FeedbackStatusUnread {
		t.Errorf("status mutated to %q on invalid input", got.Status)
	}
}
