package dto

import (
	"strings"

	"actionTracker/internal/models/actionitem"
)

// WriteRequest is the body of POST /action-items and PUT /action-items/{id}.
type WriteRequest struct {
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Category         *string  `json:"category"`
	Priority         *string  `json:"priority"`
	Status           *string  `json:"status"`
	RequestedBy      *string  `json:"requested_by"`
	AssignedTo       []string `json:"assigned_to"`
	RequestedDueDate *string  `json:"requested_due_date"`
	ExpectedDueDate  *string  `json:"expected_due_date"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// Draft reads the body the way the form would have built it. Status and
// priority are parsed leniently, category and person must match exactly.
func (r WriteRequest) Draft() actionitem.Draft {
	d := actionitem.Draft{
		Title:    r.Title,
		Status:   actionitem.StatusOpen,
		Priority: actionitem.PriorityNormal,
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Category != nil {
		d.Category = actionitem.Category(strings.TrimSpace(*r.Category))
	}
	if r.Priority != nil {
		d.Priority = actionitem.ParsePriority(*r.Priority)
	}
	if r.Status != nil {
		d.Status = actionitem.ParseStatus(*r.Status)
	}
	if r.RequestedBy != nil {
		d.RequestedBy = actionitem.Person(strings.TrimSpace(*r.RequestedBy))
	}
	for _, name := range r.AssignedTo {
		d.AssignedTo = append(d.AssignedTo, actionitem.Person(strings.TrimSpace(name)))
	}
	if r.RequestedDueDate != nil {
		d.RequestedDueDate = *r.RequestedDueDate
	}
	if r.ExpectedDueDate != nil {
		d.ExpectedDueDate = *r.ExpectedDueDate
	}
	return d.Clean()
}

// DateValue is how the backing warehouse returns DATE columns.
type DateValue struct {
	Value string `json:"value"`
}

type ItemResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	RequestedBy      *string    `json:"requested_by"`
	AssignedTo       []string   `json:"assigned_to"`
	RequestedDueDate *DateValue `json:"requested_due_date"`
	ExpectedDueDate  *DateValue `json:"expected_due_date"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
	ClosedAt         *string    `json:"closed_at"`
}

func FromItem(it actionitem.Item) ItemResponse {
	resp := ItemResponse{
		ID:               it.ID,
		Title:            it.Title,
		Description:      it.Description,
		Category:         string(it.Category),
		Status:           string(it.Status),
		Priority:         string(it.Priority),
		AssignedTo:       make([]string, 0, len(it.AssignedTo)),
		RequestedDueDate: wrapDate(it.RequestedDueDate),
		ExpectedDueDate:  wrapDate(it.ExpectedDueDate),
		CreatedAt:        it.CreatedAt,
		UpdatedAt:        it.UpdatedAt,
		ClosedAt:         it.ClosedAt,
	}
	if it.RequestedBy != "" {
		resp.RequestedBy = actionitem.Ptr(string(it.RequestedBy))
	}
	for _, p := range it.AssignedTo {
		resp.AssignedTo = append(resp.AssignedTo, string(p))
	}
	return resp
}

func FromItemList(items []actionitem.Item) []ItemResponse {
	result := make([]ItemResponse, len(items))
	for i, it := range items {
		result[i] = FromItem(it)
	}
	return result
}

func wrapDate(date *string) *DateValue {
	if date == nil {
		return nil
	}
	return &DateValue{Value: *date}
}
