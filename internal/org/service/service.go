package service

import (
	"github.com/oticonnect/backend/internal/config"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services service collection
type Services struct {
	Auth       *AuthService
	User       *UserService
	Division   *DivisionService
	Event      *EventService
	Room       *RoomService
	Feedback   *FeedbackService
	Transition *TransitionService
	Report     *ReportService
}

// NewServices creates the service collection
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		User:       NewUserService(repos.User, repos.Division),
		Division:   NewDivisionService(repos.Division, repos.User),
		Event:      NewEventService(repos.Event, repos.User, repos.Division),
		Room:       NewRoomService(repos.Room, repos.Booking, db),
		Feedback:   NewFeedbackService(repos.Feedback),
		Transition: NewTransitionService(repos.User, repos.Division, db),
		Report:     NewReportService(repos.Division, repos.User, repos.Report, cfg, logger),
	}
}
