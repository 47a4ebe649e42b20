package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/sse"
	"github.com/oticonnect/backend/internal/org/workflow"
)

// memberReview binds a user's membership status to the division whose head
// rules on it.
type memberReview struct {
	User     *entity.User
	Division *entity.Division
}

// memberMachine division-membership confirmation: the division head moves a
// pending member to confirmed or rejected.
var memberMachine = workflow.New[memberReview](
	"division membership",
	[]workflow.Status{
		entity.DivisionStatusPending,
		entity.DivisionStatusConfirmed,
		entity.DivisionStatusRejected,
	},
	func(m *memberReview) workflow.Status { return workflow.Status(m.User.DivisionStatus) },
	func(m *memberReview, s workflow.Status) { m.User.DivisionStatus = string(s) },
).Rule(entity.DivisionStatusConfirmed, workflow.Rule[memberReview]{
	From:   []workflow.Status{entity.DivisionStatusPending},
	Permit: permitDivisionHead,
	Check:  checkMemberBelongs,
}).Rule(entity.DivisionStatusRejected, workflow.Rule[memberReview]{
	From:   []workflow.Status{entity.DivisionStatusPending},
	Permit: permitDivisionHead,
	Check:  checkMemberBelongs,
})

func permitDivisionHead(a workflow.Actor, m *memberReview) error {
	if a.ID != m.Division.HeadID {
		return workflow.Denyf("only the division head can confirm members")
	}
	return nil
}

func checkMemberBelongs(m *memberReview) error {
	if !m.User.BelongsTo(m.Division.ID) {
		return workflow.Invalidf("user does not belong to this division")
	}
	return nil
}

// DivisionService division operations
type DivisionService struct {
	divisionRepo *repository.DivisionRepository
	userRepo     *repository.UserRepository
}

func NewDivisionService(divisionRepo *repository.DivisionRepository, userRepo *repository.UserRepository) *DivisionService {
	return &DivisionService{divisionRepo: divisionRepo, userRepo: userRepo}
}

// List lists divisions
func (s *DivisionService) List(ctx context.Context) ([]entity.Division, error) {
	return s.divisionRepo.FindAll(ctx)
}

// Get loads one division
func (s *DivisionService) Get(ctx context.Context, id string) (*entity.Division, error) {
	return s.divisionRepo.FindByID(ctx, id)
}

// CreateDivisionReq creation parameters
type CreateDivisionReq struct {
	Name             string  `json:"name" binding:"required"`
	Type             string  `json:"type" binding:"required,oneof=main managerial"`
	Description      string  `json:"description"`
	HeadID           string  `json:"head_id" binding:"required"`
	ParentDivisionID *string `json:"parent_division_id"`
}

// Create creates a division, admin only. The head must already hold a
// leadership role.
func (s *DivisionService) Create(ctx context.Context, req CreateDivisionReq, actor workflow.Actor) (*entity.Division, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can create divisions")
	}

	head, err := s.userRepo.FindByID(ctx, req.HeadID)
	if err != nil {
		return nil, fmt.Errorf("division head: %w", err)
	}
	if head.Role != entity.RoleAdmin && head.Role != entity.RoleCEO && head.Role != entity.RoleHead {
		return nil, workflow.Validatef("invalid division head role %q", head.Role)
	}

	if req.ParentDivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, *req.ParentDivisionID); err != nil {
			return nil, fmt.Errorf("parent division: %w", err)
		}
	}

	division := &entity.Division{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Type:             req.Type,
		Description:      req.Description,
		HeadID:           req.HeadID,
		Status:           entity.DivisionActive,
		ParentDivisionID: req.ParentDivisionID,
	}
	if err := s.divisionRepo.Create(ctx, division); err != nil {
		return nil, fmt.Errorf("create division: %w", err)
	}

	sse.PublishDivisionUpdate(division.ID, "created")
	return division, nil
}

// UpdateDivisionReq update parameters
type UpdateDivisionReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HeadID      string `json:"head_id"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Update updates a division, admin or the division's head
func (s *DivisionService) Update(ctx context.Context, id string, req UpdateDivisionReq, actor workflow.Actor) (*entity.Division, error) {
	division, err := s.divisionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.HasRole(entity.RoleAdmin) && actor.ID != division.HeadID {
		return nil, workflow.Denyf("only admin or the division head can update this division")
	}

	if req.HeadID != "" {
		newHead, err := s.userRepo.FindByID(ctx, req.HeadID)
		if err != nil {
			return nil, fmt.Errorf("new division head: %w", err)
		}
		if newHead.Role != entity.RoleAdmin && newHead.Role != entity.RoleCEO && newHead.Role != entity.RoleHead {
			return nil, workflow.Validatef("invalid division head role %q", newHead.Role)
		}
		division.HeadID = req.HeadID
	}
	if req.Name != "" {
		division.Name = req.Name
	}
	if req.Description != "" {
		division.Description = req.Description
	}
	if req.Status != "" {
		division.Status = req.Status
	}

	if err := s.divisionRepo.Update(ctx, division); err != nil {
		return nil, fmt.Errorf("update division: %w", err)
	}

	sse.PublishDivisionUpdate(division.ID, "updated")
	return division, nil
}

// ConfirmMember rules on a pending member of the division. status must be
// confirmed or rejected; only the division head may call this.
func (s *DivisionService) ConfirmMember(ctx context.Context, divisionID, userID, status string, actor workflow.Actor) (*entity.User, error) {
	division, err := s.divisionRepo.FindByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := memberReview{User: user, Division: division}
	if err := memberMachine.Transition(&review, workflow.Status(status), actor); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update member status: %w", err)
	}
	return user, nil
}

// UpdateTasks replaces a division's task list wholesale and recomputes the
// progress percentage. Admin, or the head of this division.
func (s *DivisionService) UpdateTasks(ctx context.Context, divisionID string, tasks entity.TaskList, actor workflow.Actor) (*entity.Division, error) {
	division, err := s.divisionRepo.FindByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	if !actor.HasRole(entity.RoleAdmin) {
		if !actor.HasRole(entity.RoleHead) || actor.ID != division.HeadID {
			return nil, workflow.Denyf("only admin or the division head can update tasks")
		}
	}

	for _, task := range tasks {
		if task.Title == "" {
			return nil, workflow.Validatef("task title is required")
		}
		switch task.Status {
		case entity.TaskNotStarted, entity.TaskInProgress, entity.TaskFinished:
		default:
			return nil, workflow.Validatef("invalid task status %q", task.Status)
		}
	}

	division.Tasks = tasks
	division.Progress = tasks.Progress()

	if err := s.divisionRepo.Update(ctx, division); err != nil {
		return nil, fmt.Errorf("update division tasks: %w", err)
	}

	sse.PublishDivisionUpdate(division.ID, "tasks_updated")
	return division, nil
}
