package models

import (
	"time"
)

/* =============================== Enums ================================== */

// ClientStatus defines whether a client is currently represented.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CaseActive  CaseStatus = "active"
	CasePending CaseStatus = "pending"
	CaseReview  CaseStatus = "review"
	CaseClosed  CaseStatus = "closed"
)

// Priority is shared by cases and reminders.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ReminderType classifies a reminder.
type ReminderType string

const (
	ReminderHearing  ReminderType = "hearing"
	ReminderDeadline ReminderType = "deadline"
	ReminderMeeting  ReminderType = "meeting"
	ReminderFiling   ReminderType = "filing"
	ReminderGeneral  ReminderType = "general"
)

/* =============================== Entities =============================== */

// User is the practitioner who signs in to the application.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;not null" json:"username"`
	Password      string    `gorm:"not null" json:"-"` // bcrypt hash
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	BarNumber     string    `json:"barNumber"`
	PracticeAreas string    `json:"practiceAreas"`
	Avatar        string    `json:"avatar"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}

// Client is a represented party. It owns zero or more cases.
type Client struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Address   string       `json:"address"`
	NIC       string       `gorm:"column:nic" json:"nic"`
	Status    ClientStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time    `gorm:"not null;index" json:"createdAt"`
}

// CaseType is the lookup table behind Case.CaseTypeID.
type CaseType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Code string `json:"code"`
}

// Case is a legal matter, optionally tied to a client.
type Case struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	CaseNumber  *string    `gorm:"uniqueIndex" json:"caseNumber"`
	CaseTypeID  *uint      `gorm:"column:case_type_id" json:"caseType"`
	Status      CaseStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Description string     `gorm:"type:text" json:"description"`
	ClientID    *uint      `gorm:"index" json:"clientId"`
	NIC         string     `gorm:"column:nic" json:"nic"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`

	// Relations (with-relation view; nil when absent)
	Client    *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CaseType  *CaseType      `gorm:"foreignKey:CaseTypeID" json:"type_details,omitempty"`
	Documents []CaseDocument `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
}

// CaseDocument is a file attached to a case. File holds the object key;
// URL is resolved against the object store when the document is served.
type CaseDocument struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CaseID       uint      `gorm:"not null;index" json:"case"`
	Title        string    `gorm:"not null" json:"title"`
	File         string    `gorm:"not null" json:"file"`
	Mime         string    `json:"mime"`
	Size         int64     `json:"size"`
	OriginalName string    `json:"originalName"`
	UploadedAt   time.Time `gorm:"not null" json:"uploadedAt"`

	URL string `gorm:"-" json:"url,omitempty"`
}

// Reminder is a dated task or alert, optionally tied to a case.
type Reminder struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	DueDate     time.Time    `gorm:"not null;index" json:"dueDate"`
	Location    string       `json:"location"`
	Type        ReminderType `gorm:"type:varchar(20);not null;default:'general'" json:"type"`
	Priority    Priority     `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	CaseID      *uint        `gorm:"index" json:"caseId"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`

	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

// DashboardStats is the derived read behind GET /api/dashboard/stats.
type DashboardStats struct {
	TotalCases       int64 `json:"totalCases"`
	ActiveCases      int64 `json:"activeCases"`
	TotalClients     int64 `json:"totalClients"`
	PendingReminders int64 `json:"pendingReminders"`
}
