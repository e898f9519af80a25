package actionitem

import (
	"strings"

	"github.com/google/uuid"
)

type Item struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Category         Category `json:"category"`
	Status           Status   `json:"status"`
	Priority         Priority `json:"priority"`
	RequestedBy      Person   `json:"requested_by"`
	AssignedTo       []Person `json:"assigned_to"`
	RequestedDueDate *string  `json:"requested_due_date"`
	ExpectedDueDate  *string  `json:"expected_due_date"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
	ClosedAt         *string  `json:"closed_at"`
}

type Status string
type Priority string
type Category string
type Person string

const (
	StatusOpen      Status = "Open"
	StatusInProcess Status = "In Process"
	StatusOnHold    Status = "On Hold"
	StatusClosed    Status = "Closed"
)

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

const (
	CategoryClientAcquisition Category = "Client Acquisition"
	CategoryMarketing         Category = "Marketing"
	CategorySetup             Category = "Setup"
	CategoryIT                Category = "IT"
	CategoryMisc              Category = "Misc."
)

const (
	PersonJoey  Person = "Joey"
	PersonLloyd Person = "Lloyd"
	PersonJake  Person = "Jake"
)

const (
	TitleMaxLen       = 160
	DescriptionMaxLen = 2000
)

// порядок совпадает с порядком в интерфейсе
var (
	Statuses   = []Status{StatusOpen, StatusInProcess, StatusOnHold, StatusClosed}
	Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}
	Categories = []Category{CategoryClientAcquisition, CategoryMarketing, CategorySetup, CategoryIT, CategoryMisc}
	People     = []Person{PersonJoey, PersonLloyd, PersonJake}
)

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func (p Person) Valid() bool {
	for _, v := range People {
		if v == p {
			return true
		}
	}
	return false
}

// NewTempID returns a client-side id used until the server assigns one.
func NewTempID() string {
	return "tmp-" + uuid.NewString()
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, "tmp-")
}

func (it Item) IsClosed() bool {
	return it.Status == StatusClosed
}

// EffectiveDueDate is expected_due_date, then requested_due_date, then "".
func (it Item) EffectiveDueDate() string {
	if it.ExpectedDueDate != nil && *it.ExpectedDueDate != "" {
		return *it.ExpectedDueDate
	}
	if it.RequestedDueDate != nil && *it.RequestedDueDate != "" {
		return *it.RequestedDueDate
	}
	return ""
}

func (it Item) IsAssignedTo(p Person) bool {
	for _, a := range it.AssignedTo {
		if a == p {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no pointers or slices with it.
func (it Item) Clone() Item {
	out := it
	out.Description = cloneString(it.Description)
	out.RequestedDueDate = cloneString(it.RequestedDueDate)
	out.ExpectedDueDate = cloneString(it.ExpectedDueDate)
	out.ClosedAt = cloneString(it.ClosedAt)
	if it.AssignedTo != nil {
		out.AssignedTo = append([]Person(nil), it.AssignedTo...)
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func Ptr[T any](v T) *T {
	return &v
}
