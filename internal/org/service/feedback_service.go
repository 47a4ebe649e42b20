package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/sse"
	"github.com/oticonnect/backend/internal/org/workflow"
)

// feedbackMachine triage progression. Any status may move to any other (an
// admin can re-open a resolved entry), so rules carry no From restriction;
// resolution stamps the responder.
var feedbackMachine = newFeedbackMachine()

func newFeedbackMachine() *workflow.Machine[entity.Feedback] {
	m := workflow.New[entity.Feedback](
		"feedback",
		[]workflow.Status{
			entity.FeedbackStatusUnread,
			entity.FeedbackStatusRead,
			entity.FeedbackStatusInProgress,
			entity.FeedbackStatusResolved,
		},
		func(f *entity.Feedback) workflow.Status { return workflow.Status(f.Status) },
		func(f *entity.Feedback, s workflow.Status) { f.Status = string(s) },
	)
	for _, status := range m.Statuses() {
		rule := workflow.Rule[entity.Feedback]{Permit: permitFeedbackAdmin}
		if status == entity.FeedbackStatusResolved {
			rule.Apply = func(a workflow.Actor, f *entity.Feedback) {
				now := time.Now()
				f.RespondedBy = a.ID
				f.RespondedAt = &now
			}
		}
		m.Rule(status, rule)
	}
	return m
}

func permitFeedbackAdmin(a workflow.Actor, _ *entity.Feedback) error {
	if !a.HasRole(entity.RoleAdmin) {
		return workflow.Denyf("only admin can triage feedback")
	}
	return nil
}

// FeedbackService anonymous feedback intake and admin triage
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

// CreateFeedbackReq anonymous submission
type CreateFeedbackReq struct {
	Message  string `json:"message" binding:"required"`
	Category string `json:"category" binding:"required"`
	Priority string `json:"priority"`
}

// Create records an anonymous submission. No authentication, no author field.
func (s *FeedbackService) Create(ctx context.Context, req CreateFeedbackReq) (*entity.Feedback, error) {
	switch req.Category {
	case entity.FeedbackCategoryGrievance, entity.FeedbackCategorySuggestion,
		entity.FeedbackCategoryComplaint, entity.FeedbackCategoryOther:
	default:
		return nil, workflow.Validatef("%q is not a valid feedback category", req.Category)
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	switch priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh:
	default:
		return nil, workflow.Validatef("%q is not a valid priority", priority)
	}

	feedback := &entity.Feedback{
		ID:       uuid.New().String(),
		Message:  req.Message,
		Category: req.Category,
		Status:   entity.FeedbackStatusUnread,
		Priority: priority,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	sse.PublishFeedbackUpdate(feedback.ID, "created")
	return feedback, nil
}

// List admin listing, optionally filtered by status and category
func (s *FeedbackService) List(ctx context.Context, status, category string, actor workflow.Actor) ([]entity.Feedback, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can read feedback")
	}
	return s.feedbackRepo.FindAll(ctx, status, category)
}

// Get admin read of one entry
func (s *FeedbackService) Get(ctx context.Context, id string, actor workflow.Actor) (*entity.Feedback, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can read feedback")
	}
	return s.feedbackRepo.FindByID(ctx, id)
}

// UpdateStatus moves an entry through triage
func (s *FeedbackService) UpdateStatus(ctx context.Context, id, status string, actor workflow.Actor) (*entity.Feedback, error) {
	feedback, err := s.feedbackRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := feedbackMachine.Transition(feedback, workflow.Status(status), actor); err != nil {
		return nil, err
	}
	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		return nil, fmt.Errorf("update feedback status: %w", err)
	}

	sse.PublishFeedbackUpdate(feedback.ID, "status_updated")
	return feedback, nil
}

// Respond attaches an admin response and resolves the entry
func (s *FeedbackService) Respond(ctx context.Context, id, response string, actor workflow.Actor) (*entity.Feedback, error) {
	if response == "" {
		return nil, workflow.Validatef("response must not be empty")
	}
	feedback, err := s.feedbackRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := feedbackMachine.Transition(feedback, entity.FeedbackStatusResolved, actor); err != nil {
		return nil, err
	}
	feedback.Response = response
	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		return nil, fmt.Errorf("respond to feedback: %w", err)
	}

	sse.PublishFeedbackUpdate(feedback.ID, "responded")
	return feedback, nil
}

// Delete removes an entry, admin only
func (s *FeedbackService) Delete(ctx context.Context, id string, actor workflow.Actor) error {
	if !actor.HasRole(entity.RoleAdmin) {
		return workflow.Denyf("only admin can delete feedback")
	}
	if _, err := s.feedbackRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.feedbackRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}

	sse.PublishFeedbackUpdate(id, "deleted")
	return nil
}
