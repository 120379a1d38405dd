package store

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

// DemoUsername is the account whose presence marks a store as seeded.
const (
	DemoUsername = "demo_lawyer"
	DemoPassword = "demo123"
)

// demoSeed is the fixture both backends load. Cases refer to clients and
// reminders refer to cases by index into the preceding slices.
type demoSeed struct {
	user      models.User
	caseTypes []models.CaseType
	clients   []models.Client
	cases     []seedCase
	reminders []seedReminder
}

type seedCase struct {
	c         models.Case
	clientIdx int
	typeIdx   int
}

type seedReminder struct {
	r       models.Reminder
	caseIdx int
}

func strPtr(s string) *string { return &s }

// newDemoSeed builds the fixture with due dates relative to now so the demo
// data always looks current.
func newDemoSeed(now time.Time) (demoSeed, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return demoSeed{}, err
	}
	day := 24 * time.Hour

	return demoSeed{
		user: models.User{
			Username:      DemoUsername,
			Password:      string(hash),
			FullName:      "Demo Lawyer",
			Email:         "demo@legalflow.com",
			Phone:         "+1 (555) 123-4567",
			BarNumber:     "BAR123456789",
			PracticeAreas: "Personal Injury, Corporate Law, Estate Planning",
			CreatedAt:     now,
		},
		caseTypes: []models.CaseType{
			{Name: "Personal Injury", Code: "PI"},
			{Name: "Contract Law", Code: "CL"},
			{Name: "Estate Planning", Code: "EP"},
			{Name: "Corporate Law", Code: "CO"},
			{Name: "Family Law", Code: "FL"},
			{Name: "Criminal Defense", Code: "CD"},
		},
		clients: []models.Client{
			{Name: "John Smith", Email: "john.smith@email.com", Phone: "+1 (555) 234-5678",
				Address: "123 Main St, Anytown, ST 12345", Status: models.ClientActive, CreatedAt: now},
			{Name: "Sarah Johnson", Email: "sarah.j@email.com", Phone: "+1 (555) 345-6789",
				Address: "456 Oak Ave, Somewhere, ST 67890", Status: models.ClientActive, CreatedAt: now},
			{Name: "Mike Wilson", Email: "mike.wilson@email.com", Phone: "+1 (555) 456-7890",
				Address: "789 Pine Rd, Elsewhere, ST 54321", Status: models.ClientActive, CreatedAt: now},
		},
		cases: []seedCase{
			{c: models.Case{Title: "Personal Injury Claim", CaseNumber: strPtr("PI-2024-001"),
				Status: models.CaseActive, Priority: models.PriorityHigh,
				Description: "Auto accident case with significant injuries", CreatedAt: now, UpdatedAt: now},
				clientIdx: 0, typeIdx: 0},
			{c: models.Case{Title: "Contract Dispute", CaseNumber: strPtr("CD-2024-002"),
				Status: models.CaseActive, Priority: models.PriorityMedium,
				Description: "Breach of contract dispute", CreatedAt: now, UpdatedAt: now},
				clientIdx: 1, typeIdx: 1},
			{c: models.Case{Title: "Estate Planning", CaseNumber: strPtr("EP-2024-003"),
				Status: models.CaseClosed, Priority: models.PriorityLow,
				Description: "Will and trust preparation", CreatedAt: now, UpdatedAt: now},
				clientIdx: 2, typeIdx: 2},
		},
		reminders: []seedReminder{
			{r: models.Reminder{Title: "Client Meeting", Description: "Initial consultation with new client",
				DueDate: now.Add(2 * day), Location: "Law Office Conference Room A",
				Type: models.ReminderMeeting, Priority: models.PriorityHigh, CreatedAt: now}, caseIdx: 0},
			{r: models.Reminder{Title: "Court Filing Deadline", Description: "File motion for summary judgment",
				DueDate: now.Add(7 * day), Type: models.ReminderDeadline, Priority: models.PriorityHigh,
				CreatedAt: now}, caseIdx: 1},
			{r: models.Reminder{Title: "Document Review", Description: "Review contract documents for case",
				DueDate: now.Add(3 * day), Type: models.ReminderFiling, Priority: models.PriorityMedium,
				CreatedAt: now}, caseIdx: 2},
		},
	}, nil
}
