package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

// Memory is the process-local fallback backend. Data lives for the lifetime
// of the process only. Each collection has its own id counter; one RWMutex
// guards all of them because some writes check across collections
// (client deletion, foreign key existence).
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	users     []models.User
	clients   []models.Client
	caseTypes []models.CaseType
	cases     []models.Case
	documents []models.CaseDocument
	reminders []models.Reminder

	nextUser, nextClient, nextCaseType, nextCase, nextDocument, nextReminder uint
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Ping(context.Context) error { return nil }

// Seed loads the demo fixture unless the demo user already exists.
func (m *Memory) Seed(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findUserByUsername(DemoUsername); ok {
		return nil
	}
	seed, err := newDemoSeed(m.now())
	if err != nil {
		return err
	}

	m.nextUser++
	seed.user.ID = m.nextUser
	m.users = append(m.users, seed.user)

	typeIDs := make([]uint, len(seed.caseTypes))
	for i, ct := range seed.caseTypes {
		if existing, ok := m.findCaseTypeByName(ct.Name); ok {
			typeIDs[i] = existing.ID
			continue
		}
		m.nextCaseType++
		ct.ID = m.nextCaseType
		m.caseTypes = append(m.caseTypes, ct)
		typeIDs[i] = ct.ID
	}

	clientIDs := make([]uint, len(seed.clients))
	for i, c := range seed.clients {
		m.nextClient++
		c.ID = m.nextClient
		m.clients = append(m.clients, c)
		clientIDs[i] = c.ID
	}

	caseIDs := make([]uint, len(seed.cases))
	for i, sc := range seed.cases {
		c := sc.c
		if c.CaseNumber != nil && m.caseNumberTaken(*c.CaseNumber, 0) {
			c.CaseNumber = nil
		}
		clientID, typeID := clientIDs[sc.clientIdx], typeIDs[sc.typeIdx]
		c.ClientID, c.CaseTypeID = &clientID, &typeID
		m.nextCase++
		c.ID = m.nextCase
		m.cases = append(m.cases, c)
		caseIDs[i] = c.ID
	}

	for _, sr := range seed.reminders {
		r := sr.r
		caseID := caseIDs[sr.caseIdx]
		r.CaseID = &caseID
		m.nextReminder++
		r.ID = m.nextReminder
		m.reminders = append(m.reminders, r)
	}
	return nil
}

/* ================================ Users ================================= */

func (m *Memory) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	u := m.users[i]
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.findUserByUsername(username)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.findUserByUsername(u.Username); ok {
		return nil, duplicate("username")
	}
	m.nextUser++
	u.ID = m.nextUser
	u.CreatedAt = m.now()
	m.users = append(m.users, u)
	return &u, nil
}

func (m *Memory) UpdateUser(_ context.Context, id uint, p UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	if p.Username != nil {
		if other, ok := m.findUserByUsername(*p.Username); ok && other.ID != id {
			return nil, duplicate("username")
		}
	}
	p.apply(&m.users[i])
	u := m.users[i]
	return &u, nil
}

func (m *Memory) findUserByUsername(username string) (models.User, bool) {
	i := slices.IndexFunc(m.users, func(u models.User) bool { return u.Username == username })
	if i < 0 {
		return models.User{}, false
	}
	return m.users[i], true
}

/* =============================== Clients ================================ */

func (m *Memory) GetClients(context.Context) ([]models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.clients)
	slices.SortStableFunc(out, func(a, b models.Client) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if out == nil {
		out = []models.Client{}
	}
	return out, nil
}

func (m *Memory) GetClient(_ context.Context, id uint) (*models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.findClient(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) CreateClient(_ context.Context, c models.Client) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clientDefaults(&c, m.now())
	m.nextClient++
	c.ID = m.nextClient
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *Memory) UpdateClient(_ context.Context, id uint, p ClientPatch) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	p.apply(&m.clients[i])
	c := m.clients[i]
	return &c, nil
}

func (m *Memory) DeleteClient(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return false, nil
	}
	if slices.ContainsFunc(m.cases, func(c models.Case) bool { return c.ClientID != nil && *c.ClientID == id }) {
		return false, ErrClientHasCases
	}
	m.clients = slices.Delete(m.clients, i, i+1)
	return true, nil
}

func (m *Memory) findClient(id uint) (models.Client, bool) {
	i := slices.IndexFunc(m.clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return models.Client{}, false
	}
	return m.clients[i], true
}

/* ============================== Case types ============================== */

func (m *Memory) GetCaseTypes(context.Context) ([]models.CaseType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.caseTypes)
	slices.SortFunc(out, func(a, b models.CaseType) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	if out == nil {
		out = []models.CaseType{}
	}
	return out, nil
}

func (m *Memory) findCaseType(id uint) (models.CaseType, bool) {
	i := slices.IndexFunc(m.caseTypes, func(ct models.CaseType) bool { return ct.ID == id })
	if i < 0 {
		return models.CaseType{}, false
	}
	return m.caseTypes[i], true
}

func (m *Memory) findCaseTypeByName(name string) (models.CaseType, bool) {
	i := slices.IndexFunc(m.caseTypes, func(ct models.CaseType) bool { return ct.Name == name })
	if i < 0 {
		return models.CaseType{}, false
	}
	return m.caseTypes[i], true
}

/* ================================ Cases ================================= */

func (m *Memory) GetCases(context.Context) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Case, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, m.withRelations(c, false))
	}
	slices.SortStableFunc(out, func(a, b models.Case) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) GetCase(_ context.Context, id uint) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.findCase(id)
	if !ok {
		return nil, ErrNotFound
	}
	out := m.withRelations(c, true)
	return &out, nil
}

func (m *Memory) GetCasesByClient(_ context.Context, clientID uint) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Case{}
	for _, c := range m.cases {
		if c.ClientID != nil && *c.ClientID == clientID {
			out = append(out, cloneCase(c))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Case) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) CreateCase(_ context.Context, c models.Case) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	caseDefaults(&c, m.now())
	if c.CaseNumber != nil && m.caseNumberTaken(*c.CaseNumber, 0) {
		return nil, duplicate("caseNumber")
	}
	if err := m.checkCaseRefs(c.ClientID, c.CaseTypeID); err != nil {
		return nil, err
	}
	c = cloneCase(c)
	m.nextCase++
	c.ID = m.nextCase
	m.cases = append(m.cases, c)
	out := cloneCase(c)
	return &out, nil
}

func (m *Memory) UpdateCase(_ context.Context, id uint, p CasePatch) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.cases, func(c models.Case) bool { return c.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	if n := caseNumberValue(p.CaseNumber); n != nil && m.caseNumberTaken(*n, id) {
		return nil, duplicate("caseNumber")
	}
	if err := m.checkCaseRefs(p.ClientID, p.CaseTypeID); err != nil {
		return nil, err
	}
	p.apply(&m.cases[i], m.now())
	out := cloneCase(m.cases[i])
	return &out, nil
}

// DeleteCase also drops the case's documents and reminders.
func (m *Memory) DeleteCase(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.cases, func(c models.Case) bool { return c.ID == id })
	if i < 0 {
		return false, nil
	}
	m.cases = slices.Delete(m.cases, i, i+1)
	m.documents = slices.DeleteFunc(m.documents, func(d models.CaseDocument) bool { return d.CaseID == id })
	m.reminders = slices.DeleteFunc(m.reminders, func(r models.Reminder) bool { return r.CaseID != nil && *r.CaseID == id })
	return true, nil
}

func (m *Memory) findCase(id uint) (models.Case, bool) {
	i := slices.IndexFunc(m.cases, func(c models.Case) bool { return c.ID == id })
	if i < 0 {
		return models.Case{}, false
	}
	return m.cases[i], true
}

func (m *Memory) caseNumberTaken(number string, exceptID uint) bool {
	return slices.ContainsFunc(m.cases, func(c models.Case) bool {
		return c.ID != exceptID && c.CaseNumber != nil && *c.CaseNumber == number
	})
}

func (m *Memory) checkCaseRefs(clientID, caseTypeID *uint) error {
	if clientID != nil {
		if _, ok := m.findClient(*clientID); !ok {
			return invalidRef("clientId")
		}
	}
	if caseTypeID != nil {
		if _, ok := m.findCaseType(*caseTypeID); !ok {
			return invalidRef("caseType")
		}
	}
	return nil
}

// withRelations emulates the relational join by scanning for the client and
// case type. Documents are only attached for single-case reads.
func (m *Memory) withRelations(c models.Case, docs bool) models.Case {
	out := cloneCase(c)
	if c.ClientID != nil {
		if cl, ok := m.findClient(*c.ClientID); ok {
			out.Client = &cl
		}
	}
	if c.CaseTypeID != nil {
		if ct, ok := m.findCaseType(*c.CaseTypeID); ok {
			out.CaseType = &ct
		}
	}
	if docs {
		out.Documents = m.documentsOf(c.ID)
	}
	return out
}

/* ============================== Documents =============================== */

func (m *Memory) GetDocuments(_ context.Context, caseID uint) ([]models.CaseDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documentsOf(caseID), nil
}

func (m *Memory) GetDocument(_ context.Context, id uint) (*models.CaseDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.documents, func(d models.CaseDocument) bool { return d.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	d := m.documents[i]
	return &d, nil
}

func (m *Memory) CreateDocument(_ context.Context, d models.CaseDocument) (*models.CaseDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.findCase(d.CaseID); !ok {
		return nil, invalidRef("case")
	}
	m.nextDocument++
	d.ID = m.nextDocument
	d.UploadedAt = m.now()
	d.URL = ""
	m.documents = append(m.documents, d)
	return &d, nil
}

func (m *Memory) DeleteDocument(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.documents, func(d models.CaseDocument) bool { return d.ID == id })
	if i < 0 {
		return false, nil
	}
	m.documents = slices.Delete(m.documents, i, i+1)
	return true, nil
}

// documentsOf returns the case's documents, oldest upload first.
func (m *Memory) documentsOf(caseID uint) []models.CaseDocument {
	out := []models.CaseDocument{}
	for _, d := range m.documents {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CaseDocument) int {
		return cmp.Or(a.UploadedAt.Compare(b.UploadedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

/* ============================== Reminders =============================== */

func (m *Memory) GetReminders(context.Context) ([]models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Reminder, 0, len(m.reminders))
	for _, r := range m.reminders {
		out = append(out, m.reminderWithCase(r))
	}
	slices.SortStableFunc(out, func(a, b models.Reminder) int {
		return cmp.Or(a.DueDate.Compare(b.DueDate), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (m *Memory) GetReminder(_ context.Context, id uint) (*models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.reminders, func(r models.Reminder) bool { return r.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	out := m.reminderWithCase(m.reminders[i])
	return &out, nil
}

func (m *Memory) CreateReminder(_ context.Context, r models.Reminder) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminderDefaults(&r, m.now())
	if r.CaseID != nil {
		if _, ok := m.findCase(*r.CaseID); !ok {
			return nil, invalidRef("caseId")
		}
	}
	r = cloneReminder(r)
	m.nextReminder++
	r.ID = m.nextReminder
	m.reminders = append(m.reminders, r)
	out := cloneReminder(r)
	return &out, nil
}

func (m *Memory) UpdateReminder(_ context.Context, id uint, p ReminderPatch) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.reminders, func(r models.Reminder) bool { return r.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	if p.CaseID != nil {
		if _, ok := m.findCase(*p.CaseID); !ok {
			return nil, invalidRef("caseId")
		}
	}
	p.apply(&m.reminders[i])
	out := cloneReminder(m.reminders[i])
	return &out, nil
}

func (m *Memory) DeleteReminder(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.reminders, func(r models.Reminder) bool { return r.ID == id })
	if i < 0 {
		return false, nil
	}
	m.reminders = slices.Delete(m.reminders, i, i+1)
	return true, nil
}

func (m *Memory) reminderWithCase(r models.Reminder) models.Reminder {
	out := cloneReminder(r)
	if r.CaseID != nil {
		if c, ok := m.findCase(*r.CaseID); ok {
			cc := cloneCase(c)
			out.Case = &cc
		}
	}
	return out
}

/* ============================== Dashboard =============================== */

func (m *Memory) GetDashboardStats(context.Context) (*models.DashboardStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &models.DashboardStats{
		TotalCases:   int64(len(m.cases)),
		TotalClients: int64(len(m.clients)),
	}
	for _, c := range m.cases {
		if c.Status == models.CaseActive {
			stats.ActiveCases++
		}
	}
	for _, r := range m.reminders {
		if !r.Completed {
			stats.PendingReminders++
		}
	}
	return stats, nil
}

/* =============================== Helpers ================================ */

func newestFirst(a, b time.Time, aID, bID uint) int {
	return cmp.Or(b.Compare(a), cmp.Compare(bID, aID))
}

// cloneCase detaches the pointer fields so stored rows are never aliased.
func cloneCase(c models.Case) models.Case {
	if c.CaseNumber != nil {
		n := *c.CaseNumber
		c.CaseNumber = &n
	}
	if c.ClientID != nil {
		id := *c.ClientID
		c.ClientID = &id
	}
	if c.CaseTypeID != nil {
		id := *c.CaseTypeID
		c.CaseTypeID = &id
	}
	c.Client, c.CaseType, c.Documents = nil, nil, nil
	return c
}

func cloneReminder(r models.Reminder) models.Reminder {
	if r.CaseID != nil {
		id := *r.CaseID
		r.CaseID = &id
	}
	r.Case = nil
	return r
}
