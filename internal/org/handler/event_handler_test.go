package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/service"
	"github.com/oticonnect/backend/internal/org/testutil"
	"gorm.io/gorm"
)

func setupEventTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewEventService(repos.Event, repos.User, repos.Division)
	h := NewEventHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")

	api.GET("/events", h.List)
	api.POST("/events", h.Create)
	api.POST("/events/:id/approve", h.Approve)
	api.POST("/events/:id/reject", h.Reject)
	api.POST("/events/:id/cancel", h.Cancel)
	api.POST("/events/:id/complete", h.Complete)
	api.GET("/calendar", h.OrganizationCalendar)
	api.GET("/calendar/mandatory", h.MandatoryCalendar)

	return router, db
}

func seedEvent(t *testing.T, db *gorm.DB, createdBy, status string, start, end time.Time) *entity.Event {
	t.Helper()
	event := &entity.Event{
		ID:                        uuid.New().String(),
		Title:                     "All hands",
		Status:                    status,
		CreatedBy:                 createdBy,
		StartTime:                 start,
		EndTime:                   end,
		CoordinatorApprovalStatus: entity.CoordinatorApprovalPending,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func TestApproveEventRequiresAdminOrCEO(t *testing.T) {
	router, db := setupEventTest(t)
	start := time.Now().Add(48 * time.Hour)
	ev := seedEvent(t, db, "user-creator", entity.EventStatusPending, start, start.Add(time.Hour))

	w := testutil.DoRequest(router, "POST", "/api/events/"+ev.ID+"/approve", nil,
		testutil.MemberToken("user-m"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("member approve: status = %d, want 403", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/events/"+ev.ID+"/approve", nil,
		testutil.CEOToken("user-ceo"))
	if w.Code != http.StatusOK {
		t.Fatalf("ceo approve: status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.Event
	db.First(&got, "id = ?", ev.ID)
	if got.Status != entity.EventStatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
}

func TestApproveEventSettlesCoordinatorStatus(t *testing.T) {
	router, db := setupEventTest(t)
	start := time.Now().Add(48 * time.Hour)

	approved := seedEvent(t, db, "u1", entity.EventStatusPending, start, start.Add(time.Hour))
	w := testutil.DoRequest(router, "POST", "/api/events/"+approved.ID+"/approve", nil,
		testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.Event
	db.First(&got, "id = ?", approved.ID)
	if got.CoordinatorApprovalStatus != entity.CoordinatorApprovalApproved {
		t.Errorf("coordinator_approval_status = %q after approval, want approved",
			got.CoordinatorApprovalStatus)
	}

	rejected := seedEvent(t, db, "u1", entity.EventStatusPending, start, start.Add(time.Hour))
	w = testutil.DoRequest(router, "POST", "/api/events/"+rejected.ID+"/reject", nil,
		testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("reject: status = %d: %s", w.Code, w.Body.String())
	}

	var gotRejected entity.Event
	db.First(&gotRejected, "id = ?", rejected.ID)
	if gotRejected.CoordinatorApprovalStatus != entity.CoordinatorApprovalRejected {
		t.Errorf("coordinator_approval_status = %q after rejection, want rejected",
			gotRejected.CoordinatorApprovalStatus)
	}
}

func TestCompleteEventStampsCompletion(t *testing.T) {
	router, db := setupEventTest(t)
	start := time.Now().Add(-2 * time.Hour)
	ev := seedEvent(t, db, "user-creator", entity.EventStatusApproved, start, start.Add(time.Hour))

	// Only the creator or admin may complete.
	w := testutil.DoRequest(router, "POST", "/api/events/"+ev.ID+"/complete", map[string]interface{}{
		"notes": "good turnout",
	}, testutil.MemberToken("user-other"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger complete: status = %d, want 403", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/events/"+ev.ID+"/complete", map[string]interface{}{
		"notes": "good turnout",
	}, testutil.MemberToken("user-creator"))
	if w.Code != http.StatusOK {
		t.Fatalf("creator complete: status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.Event
	db.First(&got, "id = ?", ev.ID)
	if got.Status != entity.EventStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil || got.CompletedBy != "user-creator" {
		t.Error("completion stamps missing")
	}
	if got.CompletionNotes != "good turnout" {
		t.Errorf("completion_notes = %q", got.CompletionNotes)
	}
}

func TestCompletePendingEventRejected(t *testing.T) {
	router, db := setupEventTest(t)
	start := time.Now().Add(24 * time.Hour)
	ev := seedEvent(t, db, "user-creator", entity.EventStatusPending, start, start.Add(time.Hour))

	w := testutil.DoRequest(router, "POST", "/api/events/"+ev.ID+"/complete", nil,
		testutil.MemberToken("user-creator"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestOrganizationCalendarListsApprovedFutureOnly(t *testing.T) {
	router, db := setupEventTest(t)
	now := time.Now()

	seedEvent(t, db, "u1", entity.EventStatusApproved, now.Add(24*time.Hour), now.Add(25*time.Hour))
	seedEvent(t, db, "u1", entity.EventStatusPending, now.Add(24*time.Hour), now.Add(25*time.Hour))
	seedEvent(t, db, "u1", entity.EventStatusApproved, now.Add(-48*time.Hour), now.Add(-47*time.Hour))

	w := testutil.DoRequest(router, "GET", "/api/calendar", nil, testutil.MemberToken("user-m"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want only the approved future event", len(items))
	}
}

func TestCreateEventRejectsInvertedInterval(t *testing.T) {
	router, _ := setupEventTest(t)
	start := time.Now().Add(24 * time.Hour)

	w := testutil.DoRequest(router, "POST", "/api/events", map[string]interface{}{
		"title":      "Backwards",
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(-time.Hour).Format(time.RFC3339),
	}, testutil.MemberToken("user-m"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}
