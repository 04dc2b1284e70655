package entity_repo

import (
	"pms/internal/domain/meetings"
	"pms/internal/infrastructure/storage/postgres"
)

// MeetingRepo implements meetings.Repository.
type MeetingRepo struct {
	*BaseRepo[*meetings.Meeting]
}

// NewMeetingRepo creates a new meeting repository.
func NewMeetingRepo(txManager *postgres.TxManager) *MeetingRepo {
	return &MeetingRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"meetings",
			postgres.ExtractDBColumns[meetings.Meeting](),
			[]string{"title", "minutes"},
			func() *meetings.Meeting { return &meetings.Meeting{} },
		),
	}
}

// MeetingAssigneeRepo implements meetings.AssigneeRepository.
type MeetingAssigneeRepo struct {
	*BaseRepo[*meetings.MeetingAssignee]
}

// NewMeetingAssigneeRepo creates a new meeting assignee repository.
func NewMeetingAssigneeRepo(txManager *postgres.TxManager) *MeetingAssigneeRepo {
	return &MeetingAssigneeRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"meeting_assignees",
			postgres.ExtractDBColumns[meetings.MeetingAssignee](),
			nil,
			func() *meetings.MeetingAssignee { return &meetings.MeetingAssignee{} },
		),
	}
}
