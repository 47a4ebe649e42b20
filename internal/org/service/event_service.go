package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/workflow"
)

// eventMachine event approval lifecycle. Approval and rejection are ruled on
// by admin or the CEO; completion and cancellation belong to the creator (or
// admin).
var eventMachine = workflow.New[entity.Event](
	"event",
	[]workflow.Status{
		entity.EventStatusPending,
		entity.EventStatusApproved,
		entity.EventStatusRejected,
		entity.EventStatusCompleted,
		entity.EventStatusCancelled,
	},
	func(e *entity.Event) workflow.Status { return workflow.Status(e.Status) },
	func(e *entity.Event, s workflow.Status) { e.Status = string(s) },
).Rule(entity.EventStatusApproved, workflow.Rule[entity.Event]{
	From:   []workflow.Status{entity.EventStatusPending},
	Permit: permitEventApprover,
	Apply: func(_ workflow.Actor, e *entity.Event) {
		e.CoordinatorApprovalStatus = entity.CoordinatorApprovalApproved
	},
}).Rule(entity.EventStatusRejected, workflow.Rule[entity.Event]{
	From:   []workflow.Status{entity.EventStatusPending},
	Permit: permitEventApprover,
	Apply: func(_ workflow.Actor, e *entity.Event) {
		e.CoordinatorApprovalStatus = entity.CoordinatorApprovalRejected
	},
}).Rule(entity.EventStatusCompleted, workflow.Rule[entity.Event]{
	From:   []workflow.Status{entity.EventStatusApproved},
	Permit: permitEventOwner,
	Apply: func(a workflow.Actor, e *entity.Event) {
		now := time.Now()
		e.CompletedAt = &now
		e.CompletedBy = a.ID
	},
}).Rule(entity.EventStatusCancelled, workflow.Rule[entity.Event]{
	From:   []workflow.Status{entity.EventStatusPending, entity.EventStatusApproved},
	Permit: permitEventOwner,
})

func permitEventApprover(a workflow.Actor, _ *entity.Event) error {
	if !a.HasRole(entity.RoleAdmin, entity.RoleCEO) {
		return workflow.Denyf("only admin or CEO can rule on events")
	}
	return nil
}

func permitEventOwner(a workflow.Actor, e *entity.Event) error {
	if e.CreatedBy != a.ID && !a.HasRole(entity.RoleAdmin) {
		return workflow.Denyf("only the event creator or admin can do this")
	}
	return nil
}

// EventService event operations
type EventService struct {
	eventRepo    *repository.EventRepository
	userRepo     *repository.UserRepository
	divisionRepo *repository.DivisionRepository
}

func NewEventService(eventRepo *repository.EventRepository, userRepo *repository.UserRepository, divisionRepo *repository.DivisionRepository) *EventService {
	return &EventService{eventRepo: eventRepo, userRepo: userRepo, divisionRepo: divisionRepo}
}

// List lists all events
func (s *EventService) List(ctx context.Context) ([]entity.Event, error) {
	return s.eventRepo.FindAll(ctx)
}

// Get loads one event
func (s *EventService) Get(ctx context.Context, id string) (*entity.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// CreateEventReq creation parameters
type CreateEventReq struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	DivisionID  *string           `json:"division_id"`
	StartTime   time.Time         `json:"start_time" binding:"required"`
	EndTime     time.Time         `json:"end_time" binding:"required"`
	Location    string            `json:"location"`
	IsMandatory bool              `json:"is_mandatory"`
	Attendees   entity.StringList `json:"attendees"`
}

// Create creates a pending event
func (s *EventService) Create(ctx context.Context, req CreateEventReq, actor workflow.Actor) (*entity.Event, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, workflow.Validatef("end_time must be after start_time")
	}
	if req.DivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, *req.DivisionID); err != nil {
			return nil, fmt.Errorf("division: %w", err)
		}
	}

	event := &entity.Event{
		ID:                        uuid.New().String(),
		Title:                     req.Title,
		Description:               req.Description,
		Status:                    entity.EventStatusPending,
		CreatedBy:                 actor.ID,
		DivisionID:                req.DivisionID,
		StartTime:                 req.StartTime,
		EndTime:                   req.EndTime,
		Location:                  req.Location,
		IsMandatory:               req.IsMandatory,
		Attendees:                 req.Attendees,
		ApprovalLevel:             entity.ApprovalLevelStaff,
		CoordinatorApprovalStatus: entity.CoordinatorApprovalPending,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEventReq update parameters
type UpdateEventReq struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	StartTime   *time.Time        `json:"start_time"`
	EndTime     *time.Time        `json:"end_time"`
	Attendees   entity.StringList `json:"attendees"`
}

// Update edits an event's details; creator or admin
func (s *EventService) Update(ctx context.Context, id string, req UpdateEventReq, actor workflow.Actor) (*entity.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permitEventOwner(actor, event); err != nil {
		return nil, err
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Attendees != nil {
		event.Attendees = req.Attendees
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, workflow.Validatef("end_time must be after start_time")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// SetStatus drives an event through its lifecycle (approve, reject, cancel)
func (s *EventService) SetStatus(ctx context.Context, id, status string, actor workflow.Actor) (*entity.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := eventMachine.Transition(event, workflow.Status(status), actor); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return event, nil
}

// Complete marks an approved event completed, recording who closed it and
// any completion notes.
func (s *EventService) Complete(ctx context.Context, id, notes string, actor workflow.Actor) (*entity.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := eventMachine.Transition(event, entity.EventStatusCompleted, actor); err != nil {
		return nil, err
	}
	event.CompletionNotes = notes
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("complete event: %w", err)
	}
	return event, nil
}

// Delete removes an event; creator or admin
func (s *EventService) Delete(ctx context.Context, id string, actor workflow.Actor) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permitEventOwner(actor, event); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// Calendar queries

// OrganizationCalendar approved future events
func (s *EventService) OrganizationCalendar(ctx context.Context) ([]entity.Event, error) {
	return s.eventRepo.FindUpcomingApproved(ctx, time.Now())
}

// DivisionCalendar approved future events of one division
func (s *EventService) DivisionCalendar(ctx context.Context, divisionID string) ([]entity.Event, error) {
	if _, err := s.divisionRepo.FindByID(ctx, divisionID); err != nil {
		return nil, err
	}
	return s.eventRepo.FindUpcomingApprovedByDivision(ctx, divisionID, time.Now())
}

// UserCalendar approved future events the user attends or that belong to the
// user's divisions
func (s *EventService) UserCalendar(ctx context.Context, userID string) ([]entity.Event, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.FindUpcomingForUser(ctx, user, time.Now())
}

// CalendarRange approved events within [start, end]
func (s *EventService) CalendarRange(ctx context.Context, start, end time.Time) ([]entity.Event, error) {
	if !end.After(start) {
		return nil, workflow.Validatef("end_date must be after start_date")
	}
	return s.eventRepo.FindApprovedBetween(ctx, start, end)
}

// MandatoryCalendar upcoming mandatory events
func (s *EventService) MandatoryCalendar(ctx context.Context) ([]entity.Event, error) {
	return s.eventRepo.FindUpcomingMandatory(ctx, time.Now())
}
