package actionitem

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

// Draft is the content of the create and edit forms.
type Draft struct {
	Title            string
	Description      string
	Category         Category
	Status           Status
	Priority         Priority
	RequestedBy      Person
	AssignedTo       []Person
	RequestedDueDate string
	ExpectedDueDate  string
}

// Payload is the body of POST /action-items and PUT /action-items/{id}.
// Absent optional fields are sent as null, never omitted.
type Payload struct {
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Category         *string  `json:"category"`
	Priority         Priority `json:"priority"`
	Status           Status   `json:"status"`
	RequestedBy      *string  `json:"requested_by"`
	AssignedTo       []Person `json:"assigned_to"`
	RequestedDueDate *string  `json:"requested_due_date"`
	ExpectedDueDate  *string  `json:"expected_due_date"`
}

type StatusPayload struct {
	Status Status `json:"status"`
}

var (
	ErrTitleRequired     = errors.New("Please enter a title.")
	ErrAssigneesRequired = errors.New("Please select at least one assignee.")
	ErrTitleTooLong      = fmt.Errorf("Title must be at most %d characters.", TitleMaxLen)
	ErrDescriptionLong   = fmt.Errorf("Description must be at most %d characters.", DescriptionMaxLen)
)

func NewDraft() Draft {
	return Draft{
		Category:    CategoryClientAcquisition,
		Status:      StatusOpen,
		Priority:    PriorityNormal,
		RequestedBy: PersonJoey,
		AssignedTo:  []Person{PersonJoey},
	}
}

// DraftFromItem prefills the edit form, falling back to the create defaults.
func DraftFromItem(it Item) Draft {
	d := NewDraft()
	d.Title = it.Title
	if it.Description != nil {
		d.Description = *it.Description
	}
	if it.Category.Valid() {
		d.Category = it.Category
	}
	if it.Status.Valid() {
		d.Status = it.Status
	}
	if it.Priority.Valid() {
		d.Priority = it.Priority
	}
	if it.RequestedBy.Valid() {
		d.RequestedBy = it.RequestedBy
	}
	if len(it.AssignedTo) > 0 {
		d.AssignedTo = append([]Person(nil), it.AssignedTo...)
	}
	if it.RequestedDueDate != nil {
		d.RequestedDueDate = *it.RequestedDueDate
	}
	if it.ExpectedDueDate != nil {
		d.ExpectedDueDate = *it.ExpectedDueDate
	}
	return d
}

// Clean trims text fields, collapses assignees and cuts dates to YYYY-MM-DD.
func (d Draft) Clean() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.AssignedTo = UniquePeople(d.AssignedTo)
	d.RequestedDueDate = cutDate(d.RequestedDueDate)
	d.ExpectedDueDate = cutDate(d.ExpectedDueDate)
	return d
}

// Today sets both due dates to the current day.
func (d Draft) Today(now time.Time) Draft {
	d.RequestedDueDate = TodayISO(now)
	d.ExpectedDueDate = d.RequestedDueDate
	return d
}

// InAWeek is the "+7d" shortcut.
func (d Draft) InAWeek(now time.Time) Draft {
	d.RequestedDueDate = PlusDaysISO(now, 7)
	d.ExpectedDueDate = d.RequestedDueDate
	return d
}

// Validate returns criterio.FieldErrors in form order: title first, then assignees.
func (d Draft) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if d.Title == "" {
		errs = errs.Append("title", ErrTitleRequired)
	} else if utf8.RuneCountInString(d.Title) > TitleMaxLen {
		errs = errs.Append("title", ErrTitleTooLong)
	}
	if utf8.RuneCountInString(d.Description) > DescriptionMaxLen {
		errs = errs.Append("description", ErrDescriptionLong)
	}
	if len(UniquePeople(d.AssignedTo)) == 0 {
		errs = errs.Append("assigned_to", ErrAssigneesRequired)
	}
	if !d.Status.Valid() {
		errs = errs.Append("status", fmt.Errorf("Unknown status %q.", d.Status))
	}
	if !d.Priority.Valid() {
		errs = errs.Append("priority", fmt.Errorf("Unknown priority %q.", d.Priority))
	}
	if d.Category != "" && !d.Category.Valid() {
		errs = errs.Append("category", fmt.Errorf("Unknown category %q.", d.Category))
	}
	if d.RequestedBy != "" && !d.RequestedBy.Valid() {
		errs = errs.Append("requested_by", fmt.Errorf("Unknown person %q.", d.RequestedBy))
	}
	for _, f := range []struct{ field, date string }{
		{"requested_due_date", d.RequestedDueDate},
		{"expected_due_date", d.ExpectedDueDate},
	} {
		if f.date == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, f.date); err != nil {
			errs = errs.Append(f.field, fmt.Errorf("Dates must look like YYYY-MM-DD, got %q.", f.date))
		}
	}

	return errs.ToError()
}

// Payload builds the write body. Call Clean first.
func (d Draft) Payload() Payload {
	return Payload{
		Title:            d.Title,
		Description:      optional(d.Description),
		Category:         optional(string(d.Category)),
		Priority:         d.Priority,
		Status:           d.Status,
		RequestedBy:      optional(string(d.RequestedBy)),
		AssignedTo:       UniquePeople(d.AssignedTo),
		RequestedDueDate: optional(d.RequestedDueDate),
		ExpectedDueDate:  optional(d.ExpectedDueDate),
	}
}

// Options turns a confirmed payload into the fields merged into the local record.
func (p Payload) Options() []ItemOption {
	opts := []ItemOption{
		WithTitle(p.Title),
		WithDescription(p.Description),
		WithStatus(p.Status),
		WithPriority(p.Priority),
		WithAssignedTo(p.AssignedTo),
		WithRequestedDueDate(p.RequestedDueDate),
		WithExpectedDueDate(p.ExpectedDueDate),
	}
	if p.Category != nil {
		opts = append(opts, WithCategory(Category(*p.Category)))
	}
	if p.RequestedBy != nil {
		opts = append(opts, WithRequestedBy(Person(*p.RequestedBy)))
	} else {
		opts = append(opts, WithRequestedBy(""))
	}
	return opts
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cutDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return s
}
