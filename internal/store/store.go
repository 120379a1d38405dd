// Package store holds the storage contract shared by the relational adapter
// and the in-memory fallback, plus the selector that routes between them.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

/* =============================== Errors ================================= */

var (
	// ErrNotFound is returned by get/update when the id has no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate wraps uniqueness violations (username, case number, case type name).
	ErrDuplicate = errors.New("duplicate value")
	// ErrClientHasCases refuses deletion of a client still referenced by cases.
	ErrClientHasCases = errors.New("cannot delete client with associated cases")
	// ErrInvalidReference is returned when a write points at a missing parent row.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

func duplicate(field string) error { return fmt.Errorf("%w: %s", ErrDuplicate, field) }

func invalidRef(field string) error { return fmt.Errorf("%w: %s", ErrInvalidReference, field) }

// IsDomainError reports whether err is an expected, caller-recoverable
// condition. Anything else is treated as an infrastructure failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrClientHasCases) ||
		errors.Is(err, ErrInvalidReference)
}

/* =============================== Contract =============================== */

// Store is implemented by Postgres, Memory and Selector.
//
// List orderings: clients and cases newest first, reminders soonest due
// first; ties broken on id. Get/Update return ErrNotFound for a missing id,
// Delete returns false.
type Store interface {
	Ping(ctx context.Context) error
	Seed(ctx context.Context) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, p UserPatch) (*models.User, error)

	GetClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	CreateClient(ctx context.Context, c models.Client) (*models.Client, error)
	UpdateClient(ctx context.Context, id uint, p ClientPatch) (*models.Client, error)
	DeleteClient(ctx context.Context, id uint) (bool, error)

	GetCaseTypes(ctx context.Context) ([]models.CaseType, error)

	GetCases(ctx context.Context) ([]models.Case, error)
	GetCase(ctx context.Context, id uint) (*models.Case, error)
	GetCasesByClient(ctx context.Context, clientID uint) ([]models.Case, error)
	CreateCase(ctx context.Context, c models.Case) (*models.Case, error)
	UpdateCase(ctx context.Context, id uint, p CasePatch) (*models.Case, error)
	DeleteCase(ctx context.Context, id uint) (bool, error)

	GetDocuments(ctx context.Context, caseID uint) ([]models.CaseDocument, error)
	GetDocument(ctx context.Context, id uint) (*models.CaseDocument, error)
	CreateDocument(ctx context.Context, d models.CaseDocument) (*models.CaseDocument, error)
	DeleteDocument(ctx context.Context, id uint) (bool, error)

	GetReminders(ctx context.Context) ([]models.Reminder, error)
	GetReminder(ctx context.Context, id uint) (*models.Reminder, error)
	CreateReminder(ctx context.Context, r models.Reminder) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, id uint, p ReminderPatch) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id uint) (bool, error)

	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

/* ================================ Patches =============================== */

// Patches carry only the fields present in a partial update. A nil pointer
// means "leave unchanged". Both backends derive their writes from the same
// methods below so the shapes cannot drift apart.

type UserPatch struct {
	Username      *string
	Password      *string // already hashed
	FullName      *string
	Email         *string
	Phone         *string
	BarNumber     *string
	PracticeAreas *string
	Avatar        *string
}

func (p UserPatch) columns() map[string]any {
	m := map[string]any{}
	setCol(m, "username", p.Username)
	setCol(m, "password", p.Password)
	setCol(m, "full_name", p.FullName)
	setCol(m, "email", p.Email)
	setCol(m, "phone", p.Phone)
	setCol(m, "bar_number", p.BarNumber)
	setCol(m, "practice_areas", p.PracticeAreas)
	setCol(m, "avatar", p.Avatar)
	return m
}

func (p UserPatch) apply(u *models.User) {
	setVal(&u.Username, p.Username)
	setVal(&u.Password, p.Password)
	setVal(&u.FullName, p.FullName)
	setVal(&u.Email, p.Email)
	setVal(&u.Phone, p.Phone)
	setVal(&u.BarNumber, p.BarNumber)
	setVal(&u.PracticeAreas, p.PracticeAreas)
	setVal(&u.Avatar, p.Avatar)
}

type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	NIC     *string
	Status  *models.ClientStatus
}

func (p ClientPatch) columns() map[string]any {
	m := map[string]any{}
	setCol(m, "name", p.Name)
	setCol(m, "email", p.Email)
	setCol(m, "phone", p.Phone)
	setCol(m, "address", p.Address)
	setCol(m, "nic", p.NIC)
	setCol(m, "status", p.Status)
	return m
}

func (p ClientPatch) apply(c *models.Client) {
	setVal(&c.Name, p.Name)
	setVal(&c.Email, p.Email)
	setVal(&c.Phone, p.Phone)
	setVal(&c.Address, p.Address)
	setVal(&c.NIC, p.NIC)
	setVal(&c.Status, p.Status)
}

type CasePatch struct {
	Title       *string
	CaseNumber  *string // "" clears the number
	CaseTypeID  *uint
	Status      *models.CaseStatus
	Priority    *models.Priority
	Description *string
	ClientID    *uint
	NIC         *string
}

func (p CasePatch) columns(now time.Time) map[string]any {
	m := map[string]any{"updated_at": now}
	if p.CaseNumber != nil {
		m["case_number"] = caseNumberValue(p.CaseNumber)
	}
	setCol(m, "title", p.Title)
	setCol(m, "case_type_id", p.CaseTypeID)
	setCol(m, "status", p.Status)
	setCol(m, "priority", p.Priority)
	setCol(m, "description", p.Description)
	setCol(m, "client_id", p.ClientID)
	setCol(m, "nic", p.NIC)
	return m
}

func (p CasePatch) apply(c *models.Case, now time.Time) {
	if p.CaseNumber != nil {
		c.CaseNumber = caseNumberValue(p.CaseNumber)
	}
	if p.CaseTypeID != nil {
		id := *p.CaseTypeID
		c.CaseTypeID = &id
	}
	if p.ClientID != nil {
		id := *p.ClientID
		c.ClientID = &id
	}
	setVal(&c.Title, p.Title)
	setVal(&c.Status, p.Status)
	setVal(&c.Priority, p.Priority)
	setVal(&c.Description, p.Description)
	setVal(&c.NIC, p.NIC)
	c.UpdatedAt = now
}

type ReminderPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Location    *string
	Type        *models.ReminderType
	Priority    *models.Priority
	Completed   *bool
	CaseID      *uint
}

func (p ReminderPatch) columns() map[string]any {
	m := map[string]any{}
	setCol(m, "title", p.Title)
	setCol(m, "description", p.Description)
	setCol(m, "due_date", p.DueDate)
	setCol(m, "location", p.Location)
	setCol(m, "type", p.Type)
	setCol(m, "priority", p.Priority)
	setCol(m, "completed", p.Completed)
	setCol(m, "case_id", p.CaseID)
	return m
}

func (p ReminderPatch) apply(r *models.Reminder) {
	if p.CaseID != nil {
		id := *p.CaseID
		r.CaseID = &id
	}
	setVal(&r.Title, p.Title)
	setVal(&r.Description, p.Description)
	setVal(&r.DueDate, p.DueDate)
	setVal(&r.Location, p.Location)
	setVal(&r.Type, p.Type)
	setVal(&r.Priority, p.Priority)
	setVal(&r.Completed, p.Completed)
}

func setCol[T any](m map[string]any, col string, v *T) {
	if v != nil {
		m[col] = *v
	}
}

func setVal[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// caseNumberValue normalizes an optional case number: blank means NULL so the
// unique index only ever compares real numbers.
func caseNumberValue(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

/* =============================== Defaults =============================== */

func clientDefaults(c *models.Client, now time.Time) {
	if c.Status == "" {
		c.Status = models.ClientActive
	}
	c.CreatedAt = now
}

func caseDefaults(c *models.Case, now time.Time) {
	if c.Status == "" {
		c.Status = models.CaseActive
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	c.CaseNumber = caseNumberValue(c.CaseNumber)
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Client, c.CaseType, c.Documents = nil, nil, nil
}

func reminderDefaults(r *models.Reminder, now time.Time) {
	if r.Type == "" {
		r.Type = models.ReminderGeneral
	}
	if r.Priority == "" {
		r.Priority = models.PriorityMedium
	}
	r.CreatedAt = now
	r.Case = nil
}
