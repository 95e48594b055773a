// File: internal/submission/model.go
package submission

import "time"

// Status of a submission in the review pipeline.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is a worker's proof of completed work on a task. The record
// denormalizes task and party details so both dashboards can render it
// without extra lookups.
type Submission struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	TaskTitle         string    `json:"task_title"`
	PayableAmount     int       `json:"payable_amount"`
	WorkerEmail       string    `json:"worker_email"`
	WorkerName        string    `json:"worker_name,omitempty"`
	BuyerEmail        string    `json:"buyer_email"`
	BuyerName         string    `json:"buyer_name,omitempty"`
	SubmissionDetails string    `json:"submission_details"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// CreateSubmissionRequest is the worker's submission form for a task.
type CreateSubmissionRequest struct {
	TaskID            string `json:"task_id" binding:"required"`
	SubmissionDetails string `json:"submission_details" binding:"required"`
}

// ReviewRequest identifies the submission a buyer is approving or rejecting.
type ReviewRequest struct {
	SubmissionID string `json:"submission_id" binding:"required"`
}
