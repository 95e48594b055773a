// File: internal/task/model.go
package task

import "time"

// Task is a backend-owned record; the gateway only requests lifecycle
// operations on it, it never owns one.
type Task struct {
	ID              string    `json:"id"`
	TaskTitle       string    `json:"task_title"`
	TaskDetail      string    `json:"task_detail"`
	RequiredWorkers int       `json:"required_workers"`
	PayableAmount   int       `json:"payable_amount"`
	CompletionDate  string    `json:"completion_date"`
	SubmissionInfo  string    `json:"submission_info"`
	TaskImageURL    string    `json:"task_image_url,omitempty"`
	BuyerEmail      string    `json:"buyer_email"`
	BuyerName       string    `json:"buyer_name,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// TotalCost is what creating the task deducts from the buyer.
func (t *Task) TotalCost() int {
	return t.PayableAmount * t.RequiredWorkers
}

// CreateTaskRequest defines the create-task form. Validation failures stay
// client-side as inline field messages.
type CreateTaskRequest struct {
	TaskTitle       string `json:"task_title" binding:"required,max=200"`
	TaskDetail      string `json:"task_detail" binding:"required"`
	RequiredWorkers int    `json:"required_workers" binding:"required,gt=0"`
	PayableAmount   int    `json:"payable_amount" binding:"required,gt=0"`
	CompletionDate  string `json:"completion_date" binding:"required"`
	SubmissionInfo  string `json:"submission_info" binding:"required"`
	TaskImageURL    string `json:"task_image_url,omitempty" binding:"omitempty,url"`
}

// UpdateTaskRequest covers the fields a buyer may edit after creation.
// Worker counts and amounts are frozen; changing those would desync the
// coins already escrowed upstream.
type UpdateTaskRequest struct {
	TaskTitle      string `json:"task_title" binding:"required,max=200"`
	TaskDetail     string `json:"task_detail" binding:"required"`
	SubmissionInfo string `json:"submission_info" binding:"required"`
}

// SortOrder for the available-task list. Sorting happens locally; the list
// endpoints return unsorted data.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortCoinsAsc  SortOrder = "asc"
	SortCoinsDesc SortOrder = "desc"
)
