package meetings

import (
	"context"

	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// Registry type names for the meeting subtree.
const (
	AggregateType = "meeting"
	AssigneeType  = "meeting_assignee"
)

// Repository defines storage operations for meetings.
type Repository interface {
	domain.Repository[*Meeting]
}

// AssigneeRepository defines storage operations for meeting attendees.
type AssigneeRepository interface {
	domain.Repository[*MeetingAssignee]
}

// Service provides meeting business logic.
type Service struct {
	*domain.EntityService[*Meeting]
	attendees AssigneeRepository
	txManager tx.Manager
}

// NewService creates a new meeting service.
func NewService(repo Repository, attendees AssigneeRepository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	return &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*Meeting]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		attendees: attendees,
		txManager: txManager,
	}
}

// Invite links an attendee to the meeting.
func (s *Service) Invite(ctx context.Context, meetingID, userID id.ID) (*MeetingAssignee, error) {
	attendee := NewMeetingAssignee(meetingID, userID)
	if err := attendee.Validate(ctx); err != nil {
		return nil, err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.attendees.Create(ctx, attendee)
	})
	if err != nil {
		return nil, err
	}
	return attendee, nil
}
