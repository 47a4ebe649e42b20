package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/workflow"
	"gorm.io/gorm"
)

// Retirement errors. All wrap the workflow taxonomy so the handler mapping
// stays uniform.
var (
	ErrAlreadyPending   = workflow.Invalidf("a retirement request is already pending")
	ErrAlreadyRetired   = workflow.Invalidf("user is already retired")
	ErrNoPendingRequest = workflow.Invalidf("no pending retirement request")
)

// retirementMachine self-request plus CEO ruling over retirement_status.
var retirementMachine = workflow.New[entity.User](
	"retirement",
	[]workflow.Status{
		entity.RetirementStatusPending,
		entity.RetirementStatusApproved,
		entity.RetirementStatusRejected,
	},
	func(u *entity.User) workflow.Status { return workflow.Status(u.RetirementStatus) },
	func(u *entity.User, s workflow.Status) { u.RetirementStatus = string(s) },
).Rule(entity.RetirementStatusPending, workflow.Rule[entity.User]{
	Permit: func(a workflow.Actor, u *entity.User) error {
		if a.ID != u.ID {
			return workflow.Denyf("retirement can only be requested for oneself")
		}
		return nil
	},
	Check: func(u *entity.User) error {
		if u.RetirementStatus == entity.RetirementStatusPending {
			return ErrAlreadyPending
		}
		if u.Role == entity.RoleRetired {
			return ErrAlreadyRetired
		}
		return nil
	},
	Apply: func(_ workflow.Actor, u *entity.User) {
		now := time.Now()
		u.RetirementRequestedAt = &now
	},
}).Rule(entity.RetirementStatusApproved, workflow.Rule[entity.User]{
	Permit: permitCEO,
	Check:  checkRetirementPending,
	Apply: func(a workflow.Actor, u *entity.User) {
		now := time.Now()
		u.RetirementApprovedAt = &now
		u.RetirementApprovedBy = a.ID
		u.PreviousRole = u.Role
		u.Role = entity.RoleRetired
		u.ManagerialDivisionID = nil
		u.DivisionStatus = ""
	},
}).Rule(entity.RetirementStatusRejected, workflow.Rule[entity.User]{
	Permit: permitCEO,
	Check:  checkRetirementPending,
})

func permitCEO(a workflow.Actor, _ *entity.User) error {
	if !a.HasRole(entity.RoleCEO) {
		return workflow.Denyf("only the CEO can rule on retirement requests")
	}
	return nil
}

func checkRetirementPending(u *entity.User) error {
	if u.RetirementStatus != entity.RetirementStatusPending {
		return ErrNoPendingRequest
	}
	return nil
}

// TransitionService role transitions, handover and retirement
type TransitionService struct {
	userRepo     *repository.UserRepository
	divisionRepo *repository.DivisionRepository
	db           *gorm.DB
}

func NewTransitionService(userRepo *repository.UserRepository, divisionRepo *repository.DivisionRepository, db *gorm.DB) *TransitionService {
	return &TransitionService{userRepo: userRepo, divisionRepo: divisionRepo, db: db}
}

var assignableRoles = map[string]bool{
	entity.RoleAdmin:            true,
	entity.RoleCEO:              true,
	entity.RoleCFO:              true,
	entity.RoleHead:             true,
	entity.RoleMember:           true,
	entity.RoleRetired:          true,
	entity.RoleResourceManager:  true,
	entity.RoleHumanDevelopment: true,
	entity.RoleInternalAffairs:  true,
}

// TransitionRoleReq role change parameters
type TransitionRoleReq struct {
	NewRole    string  `json:"new_role" binding:"required"`
	DivisionID *string `json:"division_id"`
}

// TransitionRole moves a user to a new role. Admin only. The previous role is
// retained and a fresh handover opened. Promoting to head with a division id
// reassigns that division's head in the same transaction.
func (s *TransitionService) TransitionRole(ctx context.Context, userID string, req TransitionRoleReq, actor workflow.Actor) (*entity.User, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can transition roles")
	}
	if !assignableRoles[req.NewRole] {
		return nil, workflow.Validatef("%q is not a valid role", req.NewRole)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var division *entity.Division
	if req.NewRole == entity.RoleHead && req.DivisionID != nil {
		division, err = s.divisionRepo.FindByID(ctx, *req.DivisionID)
		if err != nil {
			return nil, fmt.Errorf("division: %w", err)
		}
	}

	now := time.Now()
	user.PreviousRole = user.Role
	user.Role = req.NewRole
	user.RoleTransitionDate = &now
	user.HandoverCompleted = false
	if division != nil {
		user.ManagerialDivisionID = &division.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if division != nil {
			if err := tx.Model(&entity.Division{}).
				Where("id = ?", division.ID).
				Update("head_id", user.ID).Error; err != nil {
				return fmt.Errorf("reassign division head: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CompleteHandover marks the user's handover done. Admin or the user
// themselves; idempotent, no precondition on current state.
func (s *TransitionService) CompleteHandover(ctx context.Context, userID string, actor workflow.Actor) (*entity.User, error) {
	if actor.ID != userID && !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin or the user can complete a handover")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HandoverCompleted = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("complete handover: %w", err)
	}
	return user, nil
}

// RequestRetirement opens a retirement request for the actor themselves
func (s *TransitionService) RequestRetirement(ctx context.Context, actor workflow.Actor) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := retirementMachine.Transition(user, entity.RetirementStatusPending, actor); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("request retirement: %w", err)
	}
	return user, nil
}

// ApproveRetirement retires the user. CEO only; requires a pending request.
// The role change, division clearing and approval stamps land in one
// transaction.
func (s *TransitionService) ApproveRetirement(ctx context.Context, userID string, actor workflow.Actor) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := retirementMachine.Transition(user, entity.RetirementStatusApproved, actor); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Save skips nil pointer zero values for the cleared division, so
		// write the cleared columns explicitly.
		if err := tx.Model(&entity.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"role":                   user.Role,
				"previous_role":          user.PreviousRole,
				"retirement_status":      user.RetirementStatus,
				"retirement_approved_at": user.RetirementApprovedAt,
				"retirement_approved_by": user.RetirementApprovedBy,
				"managerial_division_id": nil,
				"division_status":        "",
			}).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RejectRetirement rejects a pending request. CEO only.
func (s *TransitionService) RejectRetirement(ctx context.Context, userID string, actor workflow.Actor) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := retirementMachine.Transition(user, entity.RetirementStatusRejected, actor); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("reject retirement: %w", err)
	}
	return user, nil
}

// PendingHandovers lists users with an open handover. Admin only.
func (s *TransitionService) PendingHandovers(ctx context.Context, actor workflow.Actor) ([]entity.User, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can list pending handovers")
	}
	return s.userRepo.FindPendingHandovers(ctx)
}

// PendingRetirements lists users with a pending retirement request. CEO only.
func (s *TransitionService) PendingRetirements(ctx context.Context, actor workflow.Actor) ([]entity.User, error) {
	if !actor.HasRole(entity.RoleCEO) {
		return nil, workflow.Denyf("only the CEO can list pending retirements")
	}
	return s.userRepo.FindPendingRetirements(ctx)
}
