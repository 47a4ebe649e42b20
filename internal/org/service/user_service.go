package service

import (
	"context"
	"fmt"

	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/workflow"
)

// UserService user profile operations
type UserService struct {
	userRepo     *repository.UserRepository
	divisionRepo *repository.DivisionRepository
}

func NewUserService(userRepo *repository.UserRepository, divisionRepo *repository.DivisionRepository) *UserService {
	return &UserService{userRepo: userRepo, divisionRepo: divisionRepo}
}

// GetProfile loads the actor's own profile
func (s *UserService) GetProfile(ctx context.Context, actor workflow.Actor) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, actor.ID)
}

// UpdateProfileReq profile update parameters
type UpdateProfileReq struct {
	Name                 string  `json:"name"`
	MainDivisionID       *string `json:"main_division_id"`
	ManagerialDivisionID *string `json:"managerial_division_id"`
}

// UpdateProfile updates the actor's own profile. Changing a division
// membership resets the confirmation status to pending; the division head
// confirms it afterwards.
func (s *UserService) UpdateProfile(ctx context.Context, req UpdateProfileReq, actor workflow.Actor) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.MainDivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, *req.MainDivisionID); err != nil {
			return nil, fmt.Errorf("main division: %w", err)
		}
	}
	if req.ManagerialDivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, *req.ManagerialDivisionID); err != nil {
			return nil, fmt.Errorf("managerial division: %w", err)
		}
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	divisionChanged := false
	if req.MainDivisionID != nil {
		user.MainDivisionID = req.MainDivisionID
		divisionChanged = true
	}
	if req.ManagerialDivisionID != nil {
		user.ManagerialDivisionID = req.ManagerialDivisionID
		divisionChanged = true
	}
	if divisionChanged {
		user.DivisionStatus = entity.DivisionStatusPending
	}
	user.ProfileCompleted = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// GetAvailableTimes returns the actor's weekly availability
func (s *UserService) GetAvailableTimes(ctx context.Context, actor workflow.Actor) (entity.JSONB, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return user.AvailableTimes, nil
}

// UpdateAvailableTimes replaces the actor's weekly availability
func (s *UserService) UpdateAvailableTimes(ctx context.Context, times entity.JSONB, actor workflow.Actor) (entity.JSONB, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.AvailableTimes = times
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update available times: %w", err)
	}
	return user.AvailableTimes, nil
}

// ListUsers lists all users, admin only
func (s *UserService) ListUsers(ctx context.Context, actor workflow.Actor) ([]entity.User, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can list users")
	}
	return s.userRepo.FindAll(ctx)
}
