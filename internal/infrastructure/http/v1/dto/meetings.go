package dto

import (
	"time"

	"pms/internal/domain/meetings"
)

// CreateMeetingRequest creates a meeting under a project.
type CreateMeetingRequest struct {
	Title   string     `json:"title" binding:"required"`
	HeldAt  *time.Time `json:"heldAt"`
	Minutes string     `json:"minutes"`
}

// UpdateMeetingRequest updates mutable meeting fields.
type UpdateMeetingRequest struct {
	Title   string     `json:"title" binding:"required"`
	HeldAt  *time.Time `json:"heldAt"`
	Minutes string     `json:"minutes"`
	Version int        `json:"version" binding:"required"`
}

// InviteMeetingRequest links an attendee to a meeting.
type InviteMeetingRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// MeetingResponse is the public view of a meeting.
type MeetingResponse struct {
	BaseResponse
	ProjectID string     `json:"projectId"`
	Title     string     `json:"title"`
	HeldAt    *time.Time `json:"heldAt,omitempty"`
	Minutes   string     `json:"minutes"`
}

// FromMeeting maps a meeting entity to its response.
func FromMeeting(m *meetings.Meeting) MeetingResponse {
	return MeetingResponse{
		BaseResponse: FromBase(m.Base),
		ProjectID:    m.ProjectID.String(),
		Title:        m.Title,
		HeldAt:       m.HeldAt,
		Minutes:      m.Minutes,
	}
}
