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

func setupTransitionTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewTransitionService(repos.User, repos.Division, db)
	h := NewTransitionHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")

	api.POST("/users/:id/transition", h.TransitionRole)
	api.POST("/users/:id/handover/complete", h.CompleteHandover)
	api.POST("/retirement/request", h.RequestRetirement)
	api.GET("/retirement/pending", h.PendingRetirements)
	api.POST("/retirement/:id/approve", h.ApproveRetirement)
	api.POST("/retirement/:id/reject", h.RejectRetirement)
	api.GET("/handovers/pending", h.PendingHandovers)

	return router, db
}

func TestTransitionRoleReassignsDivisionHead(t *testing.T) {
	router, db := setupTransitionTest(t)

	oldHead := testutil.SeedUser(t, db, "user-old-head", "Old Head", entity.RoleHead)
	newHead := testutil.SeedUser(t, db, "user-new-head", "New Head", entity.RoleMember)
	division := testutil.SeedDivision(t, db, "div-eng", "Engineering", oldHead.ID)

	w := testutil.DoRequest(router, "POST", "/api/users/"+newHead.ID+"/transition", map[string]interface{}{
		"new_role":    entity.RoleHead,
		"division_id": division.ID,
	}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("transition failed: %d %s", w.Code, w.Body.String())
	}

	var got entity.User
	if err := db.First(&got, "id = ?", newHead.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Role != entity.RoleHead {
		t.Errorf("role = %q, want head", got.Role)
	}
	if got.PreviousRole != entity.RoleMember {
		t.Errorf("previous_role = %q, want member", got.PreviousRole)
	}
	if got.HandoverCompleted {
		t.Error("handover_completed should be reset to false")
	}
	if got.RoleTransitionDate == nil {
		t.Error("role_transition_date should be stamped")
	}

	// The division reflects the new head immediately.
	var gotDiv entity.Division
	if err := db.First(&gotDiv, "id = ?", division.ID).Error; err != nil {
		t.Fatalf("reload division: %v", err)
	}
	if gotDiv.HeadID != newHead.ID {
		t.Errorf("division head_id = %q, want %q", gotDiv.HeadID, newHead.ID)
	}
}

func TestTransitionRoleRequiresAdmin(t *testing.T) {
	router, db := setupTransitionTest(t)
	target := testutil.SeedUser(t, db, "user-target", "Target", entity.RoleMember)

	w := testutil.DoRequest(router, "POST", "/api/users/"+target.ID+"/transition", map[string]interface{}{
		"new_role": entity.RoleHead,
	}, testutil.MemberToken("user-someone"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}

	var got entity.User
	db.First(&got, "id = ?", target.ID)
	if got.Role != entity.RoleMember {
		t.Errorf("role mutated on denied call: %q", got.Role)
	}
}

func TestCompleteHandoverIdempotent(t *testing.T) {
	router, db := setupTransitionTest(t)
	user := testutil.SeedUser(t, db, "user-h1", "Handover User", entity.RoleHead)

	for i := 0; i < 2; i++ {
		w := testutil.DoRequest(router, "POST", "/api/users/"+user.ID+"/handover/complete", nil,
			testutil.GenerateTestToken(user.ID, user.Name, user.Email, user.Role))
		if w.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d: %s", i+1, w.Code, w.Body.String())
		}

		var got entity.User
		db.First(&got, "id = ?", user.ID)
		if !got.HandoverCompleted {
			t.Fatalf("call %d: handover_completed = false, want true", i+1)
		}
	}
}

func TestCompleteHandoverDeniedForOtherUser(t *testing.T) {
	router, db := setupTransitionTest(t)
	user := testutil.SeedUser(t, db, "user-h2", "Handover User", entity.RoleHead)

	w := testutil.DoRequest(router, "POST", "/api/users/"+user.ID+"/handover/complete", nil,
		testutil.MemberToken("user-intruder"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}

	var got entity.User
	db.First(&got, "id = ?", user.ID)
	if got.HandoverCompleted {
		t.Error("handover_completed mutated on denied call")
	}
}

func TestRetirementLifecycle(t *testing.T) {
	router, db := setupTransitionTest(t)
	user := testutil.SeedUser(t, db, "user-r1", "Retiring User", entity.RoleHead)
	ceo := testutil.SeedUser(t, db, "user-ceo", "The CEO", entity.RoleCEO)
	division := testutil.SeedDivision(t, db, "div-r", "Managed", user.ID)
	db.Model(&entity.User{}).Where("id = ?", user.ID).
		Update("managerial_division_id", division.ID)

	userToken := testutil.GenerateTestToken(user.ID, user.Name, user.Email, user.Role)

	// Self-request opens the flow.
	w := testutil.DoRequest(router, "POST", "/api/retirement/request", nil, userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("request: status = %d: %s", w.Code, w.Body.String())
	}

	// A second request while one is pending is rejected.
	w = testutil.DoRequest(router, "POST", "/api/retirement/request", nil, userToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate request: status = %d, want 400: %s", w.Code, w.Body.String())
	}

	// A member cannot approve.
	w = testutil.DoRequest(router, "POST", "/api/retirement/"+user.ID+"/approve", nil,
		testutil.MemberToken("user-nobody"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("member approve: status = %d, want 403", w.Code)
	}

	// The CEO approves: role flips to retired, managerial division cleared.
	ceoToken := testutil.GenerateTestToken(ceo.ID, ceo.Name, ceo.Email, ceo.Role)
	w = testutil.DoRequest(router, "POST", "/api/retirement/"+user.ID+"/approve", nil, ceoToken)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.User
	if err := db.First(&got, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Role != entity.RoleRetired {
		t.Errorf("role = %q, want retired", got.Role)
	}
	if got.PreviousRole != entity.RoleHead {
		t.Errorf("previous_role = %q, want head", got.PreviousRole)
	}
	if got.ManagerialDivisionID != nil {
		t.Errorf("managerial_division_id = %v, want cleared", *got.ManagerialDivisionID)
	}
	if got.RetirementApprovedBy != ceo.ID {
		t.Errorf("retirement_approved_by = %q, want %q", got.RetirementApprovedBy, ceo.ID)
	}

	// Approving again fails: no pending request anymore.
	w = testutil.DoRequest(router, "POST", "/api/retirement/"+user.ID+"/approve", nil, ceoToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second approve: status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestRejectRetirementKeepsRole(t *testing.T) {
	router, db := setupTransitionTest(t)
	user := testutil.SeedUser(t, db, "user-r2", "Staying User", entity.RoleMember)
	ceo := testutil.SeedUser(t, db, "user-ceo2", "The CEO", entity.RoleCEO)

	w := testutil.DoRequest(router, "POST", "/api/retirement/request", nil,
		testutil.GenerateTestToken(user.ID, user.Name, user.Email, user.Role))
	if w.Code != http.StatusOK {
		t.Fatalf("request: status = %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/retirement/"+user.ID+"/reject", nil,
		testutil.GenerateTestToken(ceo.ID, ceo.Name, ceo.Email, ceo.Role))
	if w.Code != http.StatusOK {
		t.Fatalf("reject: status = %d: %s", w.Code, w.Body.String())
	}

	var got entity.User
	db.First(&got, "id = ?", user.ID)
	if got.Role != entity.RoleMember {
		t.Errorf("role = %q, want member", got.Role)
	}
	if got.RetirementStatus != entity.RetirementStatusRejected {
		t.Errorf("retirement_status = %q, want rejected", got.RetirementStatus)
	}
}
