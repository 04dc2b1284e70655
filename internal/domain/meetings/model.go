// Package meetings provides project meetings and their attendees.
package meetings

import (
	"context"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Meeting represents a project meeting with minutes.
type Meeting struct {
	entity.Base

	ProjectID id.ID      `db:"project_id" json:"projectId"`
	Title     string     `db:"title" json:"title"`
	HeldAt    *time.Time `db:"held_at" json:"heldAt,omitempty"`
	Minutes   string     `db:"minutes" json:"minutes"`
}

// NewMeeting creates a new Meeting.
func NewMeeting(projectID id.ID, title string) *Meeting {
	return &Meeting{
		Base:      entity.NewBase(),
		ProjectID: projectID,
		Title:     title,
	}
}

// Validate implements entity.Validatable interface.
func (m *Meeting) Validate(ctx context.Context) error {
	if id.IsNil(m.ProjectID) {
		return apperror.NewValidation("project is required").
			WithDetail("field", "projectId")
	}
	if m.Title == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}
	return nil
}

// MeetingAssignee links an attendee to a meeting.
type MeetingAssignee struct {
	entity.Base

	MeetingID id.ID `db:"meeting_id" json:"meetingId"`
	UserID    id.ID `db:"user_id" json:"userId"`
}

// NewMeetingAssignee creates an attendance row.
func NewMeetingAssignee(meetingID, userID id.ID) *MeetingAssignee {
	return &MeetingAssignee{
		Base:      entity.NewBase(),
		MeetingID: meetingID,
		UserID:    userID,
	}
}

// Validate implements entity.Validatable interface.
func (a *MeetingAssignee) Validate(ctx context.Context) error {
	if id.IsNil(a.MeetingID) || id.IsNil(a.UserID) {
		return apperror.NewValidation("meeting and user are required")
	}
	return nil
}
