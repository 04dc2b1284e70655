package handlers

import (
	"github.com/gin-gonic/gin"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain/meetings"
	"pms/internal/infrastructure/http/v1/dto"
)

// MeetingHandler handles meeting endpoints.
type MeetingHandler struct {
	BaseHandler
	service *meetings.Service
}

// NewMeetingHandler creates a new meeting handler.
func NewMeetingHandler(service *meetings.Service) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// Create creates a meeting under a project.
// POST /v1/projects/:id/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateMeetingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := meetings.NewMeeting(projectID, req.Title)
	m.HeldAt = req.HeldAt
	m.Minutes = req.Minutes

	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.FromMeeting(m))
}

// Get retrieves a meeting by ID.
// GET /v1/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	meetingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), meetingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromMeeting(m))
}

// Update updates a meeting with optimistic locking.
// PUT /v1/meetings/:id
func (h *MeetingHandler) Update(c *gin.Context) {
	meetingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMeetingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), meetingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	m.Title = req.Title
	m.HeldAt = req.HeldAt
	m.Minutes = req.Minutes
	m.Version = req.Version

	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromMeeting(m))
}

// Delete soft-deletes a meeting and propagates to its attendees.
// DELETE /v1/meetings/:id
func (h *MeetingHandler) Delete(c *gin.Context) {
	meetingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	alreadyDeleted, err := h.service.Delete(c.Request.Context(), meetingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.DeleteResponse{Deleted: true, AlreadyDeleted: alreadyDeleted})
}

// Invite links an attendee to a meeting.
// POST /v1/meetings/:id/attendees
func (h *MeetingHandler) Invite(c *gin.Context) {
	meetingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.InviteMeetingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID, err := id.Parse(req.UserID)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid userId").WithCause(err))
		return
	}

	attendee, err := h.service.Invite(c.Request.Context(), meetingID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.IDResponse{ID: attendee.ID.String()})
}
