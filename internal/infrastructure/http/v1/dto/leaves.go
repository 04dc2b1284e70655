package dto

import "time"

// SubmitLeaveRequest files a leave request.
type SubmitLeaveRequest struct {
	StartsOn  time.Time `json:"startsOn" binding:"required"`
	EndsOn    time.Time `json:"endsOn" binding:"required"`
	Days      string    `json:"days" binding:"required"`
	IsHalfDay bool      `json:"isHalfDay"`
}

// LeaveBalanceResponse reports the remaining leave days.
type LeaveBalanceResponse struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
	AsOf    string `json:"asOf"`
}
