// Package server assembles the Fiber application: middleware, the /api
// surface and the static and documentation routes.
package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/internal/auth"
	"github.com/aldoetobex/legalflow-backend/internal/cases"
	"github.com/aldoetobex/legalflow-backend/internal/clients"
	"github.com/aldoetobex/legalflow-backend/internal/dashboard"
	"github.com/aldoetobex/legalflow-backend/internal/reminders"
	"github.com/aldoetobex/legalflow-backend/internal/storage"
	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/config"
)

// Backend is the store the handlers talk to plus its connectivity state.
// *store.Selector implements it.
type Backend interface {
	store.Store
	Connected() bool
}

// New builds the application. Nothing is listening yet.
func New(cfg config.Config, st Backend, objects storage.ObjectStore, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "legalflow",
		ErrorHandler: auth.ErrorHandler(log),
		// Multipart overhead on top of the largest accepted file
		BodyLimit:             int(cfg.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: HeaderStorageBackend,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		b := store.BackendFallback
		if st.Connected() {
			b = store.BackendPrimary
		}
		return c.JSON(fiber.Map{"status": "ok", "storage": b})
	})
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	if local, ok := objects.(*storage.Local); ok {
		app.Static(storage.LocalRoute, local.Root())
	}

	api := app.Group("/api", storageBackend(st.Connected))

	// Auth (login stays open)
	authH := auth.NewHandler(st, cfg.JWTSecret, cfg.JWTTTL)
	api.Post("/auth/login", authH.Login)

	api.Use(auth.Authenticate(cfg.JWTSecret, cfg.AuthRequired))
	requireAuth := auth.RequireAuth(cfg.JWTSecret)
	api.Get("/auth/me", requireAuth, authH.Me)
	api.Put("/user/:id", requireAuth, authH.UpdateProfile)

	// Dashboard
	dashH := dashboard.NewHandler(st)
	api.Get("/dashboard/stats", dashH.Stats)

	// Clients
	clientH := clients.NewHandler(st)
	api.Get("/clients", clientH.List)
	api.Post("/clients", clientH.Create)
	api.Get("/clients/:id", clientH.Get)
	api.Put("/clients/:id", clientH.Update)
	api.Delete("/clients/:id", clientH.Delete)
	api.Get("/clients/:id/cases", clientH.Cases)

	// Cases & documents
	caseH := cases.NewHandler(st, objects, cfg.MaxUploadBytes, log)
	api.Get("/case-types", caseH.CaseTypes)
	api.Get("/cases", caseH.List)
	api.Post("/cases", caseH.Create)
	api.Get("/cases/:id", caseH.Get)
	api.Put("/cases/:id", caseH.Update)
	api.Delete("/cases/:id", caseH.Delete)
	api.Get("/cases/:id/documents", caseH.ListDocuments)
	api.Post("/documents", caseH.UploadDocument)
	api.Delete("/documents/:id", caseH.DeleteDocument)
	// Older clients post to /case-documents
	api.Post("/case-documents", caseH.UploadDocument)
	api.Delete("/case-documents/:id", caseH.DeleteDocument)

	// Reminders
	remH := reminders.NewHandler(st)
	api.Get("/reminders", remH.List)
	api.Post("/reminders", remH.Create)
	api.Get("/reminders/:id", remH.Get)
	api.Put("/reminders/:id", remH.Update)
	api.Delete("/reminders/:id", remH.Delete)

	return app
}
