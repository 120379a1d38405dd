package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

// Postgres executes the Store contract through GORM. All queries are
// parameterized; inserts and updates read the stored row back with RETURNING.
type Postgres struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Migrate creates or updates the schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	return p.db.WithContext(ctx).AutoMigrate(
		&models.User{}, &models.Client{}, &models.CaseType{},
		&models.Case{}, &models.CaseDocument{}, &models.Reminder{},
	)
}

// Ping is the connectivity probe: a trivial count on users.
func (p *Postgres) Ping(ctx context.Context) error {
	var n int64
	return p.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
}

// Seed loads the demo fixture in one transaction unless the demo user exists.
func (p *Postgres) Seed(ctx context.Context) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", DemoUsername).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		seed, err := newDemoSeed(p.now())
		if err != nil {
			return err
		}
		if err := tx.Create(&seed.user).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed.caseTypes).Error; err != nil {
			return err
		}
		names := make([]string, len(seed.caseTypes))
		for i, ct := range seed.caseTypes {
			names[i] = ct.Name
		}
		var types []models.CaseType
		if err := tx.Where("name IN ?", names).Find(&types).Error; err != nil {
			return err
		}
		typeIDs := make(map[string]uint, len(types))
		for _, ct := range types {
			typeIDs[ct.Name] = ct.ID
		}

		if err := tx.Create(&seed.clients).Error; err != nil {
			return err
		}

		caseIDs := make([]uint, len(seed.cases))
		for i, sc := range seed.cases {
			c := sc.c
			clientID := seed.clients[sc.clientIdx].ID
			c.ClientID = &clientID
			if id, ok := typeIDs[seed.caseTypes[sc.typeIdx].Name]; ok {
				c.CaseTypeID = &id
			}
			// A taken case number leaves c.ID at zero; its reminders are skipped.
			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&c).Error; err != nil {
				return err
			}
			caseIDs[i] = c.ID
		}

		for _, sr := range seed.reminders {
			caseID := caseIDs[sr.caseIdx]
			if caseID == 0 {
				continue
			}
			r := sr.r
			r.CaseID = &caseID
			if err := tx.Omit(clause.Associations).Create(&r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

/* ================================ Users ================================= */

func (p *Postgres) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := p.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := p.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.ID = 0
	u.CreatedAt = p.now()
	if err := p.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		return p.GetUser(ctx, id)
	}
	var u models.User
	res := p.db.WithContext(ctx).Model(&u).Clauses(clause.Returning{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &u, nil
}

/* =============================== Clients ================================ */

func (p *Postgres) GetClients(ctx context.Context) ([]models.Client, error) {
	out := []models.Client{}
	if err := p.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := p.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (p *Postgres) CreateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	c.ID = 0
	clientDefaults(&c, p.now())
	if err := p.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (p *Postgres) UpdateClient(ctx context.Context, id uint, patch ClientPatch) (*models.Client, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		return p.GetClient(ctx, id)
	}
	var c models.Client
	res := p.db.WithContext(ctx).Model(&c).Clauses(clause.Returning{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &c, nil
}

// DeleteClient refuses while any case still references the client.
func (p *Postgres) DeleteClient(ctx context.Context, id uint) (bool, error) {
	db := p.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Case{}).Where("client_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, ErrClientHasCases
	}

	res := db.Delete(&models.Client{}, "id = ?", id)
	if res.Error != nil {
		// A case inserted between the count and the delete trips the FK.
		if pgCode(res.Error) == "23503" {
			return false, ErrClientHasCases
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

/* ============================== Case types ============================== */

func (p *Postgres) GetCaseTypes(ctx context.Context) ([]models.CaseType, error) {
	out := []models.CaseType{}
	if err := p.db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

/* ================================ Cases ================================= */

// GetCases left-joins clients and case types, newest first.
func (p *Postgres) GetCases(ctx context.Context) ([]models.Case, error) {
	out := []models.Case{}
	err := p.db.WithContext(ctx).
		Joins("Client").
		Joins("CaseType").
		Order("cases.created_at DESC, cases.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		normalizeCase(&out[i])
	}
	return out, nil
}

func (p *Postgres) GetCase(ctx context.Context, id uint) (*models.Case, error) {
	var c models.Case
	err := p.db.WithContext(ctx).
		Joins("Client").
		Joins("CaseType").
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC, id ASC") }).
		Where("cases.id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, mapError(err)
	}
	normalizeCase(&c)
	return &c, nil
}

func (p *Postgres) GetCasesByClient(ctx context.Context, clientID uint) ([]models.Case, error) {
	out := []models.Case{}
	err := p.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) CreateCase(ctx context.Context, c models.Case) (*models.Case, error) {
	db := p.db.WithContext(ctx)
	c.ID = 0
	caseDefaults(&c, p.now())
	if err := p.checkCaseRefs(db, c.ClientID, c.CaseTypeID); err != nil {
		return nil, err
	}
	if err := db.Omit(clause.Associations).Create(&c).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// UpdateCase always re-stamps updated_at, even for an empty patch.
func (p *Postgres) UpdateCase(ctx context.Context, id uint, patch CasePatch) (*models.Case, error) {
	db := p.db.WithContext(ctx)
	if err := p.checkCaseRefs(db, patch.ClientID, patch.CaseTypeID); err != nil {
		return nil, err
	}
	var c models.Case
	res := db.Model(&c).Clauses(clause.Returning{}).Where("id = ?", id).Updates(patch.columns(p.now()))
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &c, nil
}

// DeleteCase removes the case together with its reminders and documents.
func (p *Postgres) DeleteCase(ctx context.Context, id uint) (bool, error) {
	var removed bool
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("case_id = ?", id).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("case_id = ?", id).Delete(&models.CaseDocument{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Case{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (p *Postgres) checkCaseRefs(db *gorm.DB, clientID, caseTypeID *uint) error {
	if clientID != nil {
		if ok, err := exists(db, &models.Client{}, *clientID); err != nil {
			return err
		} else if !ok {
			return invalidRef("clientId")
		}
	}
	if caseTypeID != nil {
		if ok, err := exists(db, &models.CaseType{}, *caseTypeID); err != nil {
			return err
		} else if !ok {
			return invalidRef("caseType")
		}
	}
	return nil
}

/* ============================== Documents =============================== */

func (p *Postgres) GetDocuments(ctx context.Context, caseID uint) ([]models.CaseDocument, error) {
	out := []models.CaseDocument{}
	err := p.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("uploaded_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) GetDocument(ctx context.Context, id uint) (*models.CaseDocument, error) {
	var d models.CaseDocument
	if err := p.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (p *Postgres) CreateDocument(ctx context.Context, d models.CaseDocument) (*models.CaseDocument, error) {
	db := p.db.WithContext(ctx)
	if ok, err := exists(db, &models.Case{}, d.CaseID); err != nil {
		return nil, err
	} else if !ok {
		return nil, invalidRef("case")
	}
	d.ID = 0
	d.UploadedAt = p.now()
	d.URL = ""
	if err := db.Create(&d).Error; err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, id uint) (bool, error) {
	res := p.db.WithContext(ctx).Delete(&models.CaseDocument{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

/* ============================== Reminders =============================== */

// GetReminders left-joins cases, soonest due first.
func (p *Postgres) GetReminders(ctx context.Context) ([]models.Reminder, error) {
	out := []models.Reminder{}
	err := p.db.WithContext(ctx).
		Joins("Case").
		Order("reminders.due_date ASC, reminders.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		normalizeReminder(&out[i])
	}
	return out, nil
}

func (p *Postgres) GetReminder(ctx context.Context, id uint) (*models.Reminder, error) {
	var r models.Reminder
	err := p.db.WithContext(ctx).
		Joins("Case").
		Where("reminders.id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, mapError(err)
	}
	normalizeReminder(&r)
	return &r, nil
}

func (p *Postgres) CreateReminder(ctx context.Context, r models.Reminder) (*models.Reminder, error) {
	db := p.db.WithContext(ctx)
	r.ID = 0
	reminderDefaults(&r, p.now())
	if r.CaseID != nil {
		if ok, err := exists(db, &models.Case{}, *r.CaseID); err != nil {
			return nil, err
		} else if !ok {
			return nil, invalidRef("caseId")
		}
	}
	if err := db.Omit(clause.Associations).Create(&r).Error; err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (p *Postgres) UpdateReminder(ctx context.Context, id uint, patch ReminderPatch) (*models.Reminder, error) {
	db := p.db.WithContext(ctx)
	if patch.CaseID != nil {
		if ok, err := exists(db, &models.Case{}, *patch.CaseID); err != nil {
			return nil, err
		} else if !ok {
			return nil, invalidRef("caseId")
		}
	}
	cols := patch.columns()
	if len(cols) == 0 {
		var r models.Reminder
		if err := db.First(&r, "id = ?", id).Error; err != nil {
			return nil, mapError(err)
		}
		return &r, nil
	}
	var r models.Reminder
	res := db.Model(&r).Clauses(clause.Returning{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (p *Postgres) DeleteReminder(ctx context.Context, id uint) (bool, error) {
	res := p.db.WithContext(ctx).Delete(&models.Reminder{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

/* ============================== Dashboard =============================== */

// GetDashboardStats runs the four counts concurrently.
func (p *Postgres) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var s models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	db := p.db.WithContext(gctx)

	g.Go(func() error {
		return db.Model(&models.Case{}).Count(&s.TotalCases).Error
	})
	g.Go(func() error {
		return db.Model(&models.Case{}).Where("status = ?", models.CaseActive).Count(&s.ActiveCases).Error
	})
	g.Go(func() error {
		return db.Model(&models.Client{}).Count(&s.TotalClients).Error
	})
	g.Go(func() error {
		return db.Model(&models.Reminder{}).Where("completed = ?", false).Count(&s.PendingReminders).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

/* =============================== Helpers ================================ */

func exists(db *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// normalizeCase drops relations the left join could not match.
func normalizeCase(c *models.Case) {
	if c.Client != nil && c.Client.ID == 0 {
		c.Client = nil
	}
	if c.CaseType != nil && c.CaseType.ID == 0 {
		c.CaseType = nil
	}
}

func normalizeReminder(r *models.Reminder) {
	if r.Case != nil && r.Case.ID == 0 {
		r.Case = nil
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError turns driver errors the caller can act on into store errors.
func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return duplicate(constraintField(pgErr.ConstraintName))
	case "23503": // foreign_key_violation
		return invalidRef(constraintField(pgErr.ConstraintName))
	}
	return err
}

func constraintField(name string) string {
	switch {
	case strings.Contains(name, "username"):
		return "username"
	case strings.Contains(name, "case_number"):
		return "caseNumber"
	case strings.Contains(name, "case_types"):
		return "name"
	case strings.Contains(name, "client"):
		return "clientId"
	case strings.Contains(name, "case"):
		return "caseId"
	}
	return name
}
