package models

import "time"

type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Guide struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Body     string `json:"body,omitempty"`
}

type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	StartsAt time.Time `json:"startsAt"`
}

type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	AssigneeID  string    `json:"assigneeId,omitempty"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AssignTaskRequest struct {
	AssigneeID string `json:"assigneeId" form:"assignee_id" binding:"required"`
}

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Shift struct {
	ID       string    `json:"id"`
	MemberID string    `json:"memberId"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Application struct {
	ID         string `json:"id,omitempty"`
	Motivation string `json:"motivation" form:"motivation" binding:"required"`
	Skills     string `json:"skills,omitempty" form:"skills"`
	Status     string `json:"status,omitempty"`
}

type NewBlog struct {
	Title   string `json:"title" form:"title" binding:"required"`
	Summary string `json:"summary,omitempty" form:"summary"`
	Body    string `json:"body" form:"body" binding:"required"`
}

// ListItem is the common shape section pages render.
type ListItem struct {
	ID       string
	Title    string
	Subtitle string
}
