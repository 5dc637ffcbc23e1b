// Package task implements permission-gated task CRUD and the notification
// intents derived from each mutation.
package task

import "time"

// Priority levels, from least to most pressing.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists every valid priority value.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Status values. There is deliberately no server-enforced transition graph:
// any status may follow any other. Workflow ordering is a UI convention.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every valid status value.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusReview, StatusCompleted}

// Task is a unit of work. The creator owns it: only the creator may mutate or
// delete it. AssignedToIDs is never empty.
type Task struct {
	ID            string    `bson:"_id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	DueDate       time.Time `bson:"due_date" json:"dueDate"`
	Priority      Priority  `bson:"priority" json:"priority"`
	Status        Status    `bson:"status" json:"status"`
	CreatorID     string    `bson:"creator_id" json:"creatorId"`
	AssignedToIDs []string  `bson:"assigned_to_ids" json:"assignedToIds"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsMember reports whether the user is the creator or an assignee.
func (t *Task) IsMember(userID string) bool {
	if t.CreatorID == userID {
		return true
	}
	for _, id := range t.AssignedToIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueDate       time.Time `json:"dueDate"`
	Priority      Priority  `json:"priority"`
	AssignedToIDs []string  `json:"assignedToIds"`
}

// UpdateInput is a patch: nil fields are left unchanged. An explicitly empty
// assignee list is rejected, never persisted.
type UpdateInput struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	DueDate       *time.Time `json:"dueDate"`
	Priority      *Priority  `json:"priority"`
	Status        *Status    `json:"status"`
	AssignedToIDs []string   `json:"assignedToIds"`
}

// Filter narrows and orders a task listing. Status and Priority are matched
// case-insensitively when set. SortBy accepts "dueDate" (ascending) or
// "createdAt" (descending); anything else leaves store order.
type Filter struct {
	Status   string
	Priority string
	SortBy   string
}

// Dashboard summarizes the tasks a user is involved in.
type Dashboard struct {
	TotalTasks   int            `json:"totalTasks"`
	StatusCounts map[Status]int `json:"statusCounts"`
	OverdueTasks int            `json:"overdueTasks"`
}
