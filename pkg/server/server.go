// Package server exposes the lab over HTTP: the catalog, the presets and
// live rendering sessions.
package server

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
)

// Server is the HTTP front end.
type Server struct {
	app      *fiber.App
	settings config.Settings
	catalog  *catalog.Catalog
	loader   presets.Loader
	logger   *logger.Logger
	validate *validator.Validate
	sessions *sessionStore
}

// New builds the app and registers every route. A nil loader serves the
// embedded presets.
func New(settings config.Settings, loader presets.Loader, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if loader == nil {
		loader = presets.EmbeddedLoader{}
	}
	s := &Server{
		settings: settings,
		catalog:  catalog.Default(),
		loader:   loader,
		logger:   log.With("api"),
		validate: validator.New(),
		sessions: newSessionStore(settings.SessionTTL, settings.MaxSessions),
	}

	s.app = fiber.New(fiber.Config{
		ServerHeader:          config.AppName,
		AppName:               config.AppName + " " + config.Version,
		DisableStartupMessage: true,
	})
	s.app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: s.logger.Zerolog(),
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("xsslab API running")
	})

	s.app.Use(strings.TrimSuffix(presets.URLPrefix, "/"), filesystem.New(filesystem.Config{
		Root: http.FS(presets.Files()),
	}))

	api := s.app.Group("/api")
	api.Get("/catalog", s.getCatalog)
	api.Get("/presets", s.getPresets)
	api.Get("/sources/:key", s.getSource)

	sessions := api.Group("/sessions")
	sessions.Post("/", s.createSession)
	sessions.Get("/:id", s.withSession(s.getSession))
	sessions.Delete("/:id", s.deleteSession)
	sessions.Put("/:id/payload", s.withSession(s.setPayload))
	sessions.Put("/:id/output", s.withSession(s.setOutput))
	sessions.Post("/:id/preset", s.withSession(s.loadPreset))
	sessions.Post("/:id/update", s.withSession(s.update))
	sessions.Put("/:id/auto-update", s.withSession(s.setAutoUpdate))
	sessions.Post("/:id/interact", s.withSession(s.interact))
	sessions.Post("/:id/timers", s.withSession(s.runTimers))
	sessions.Delete("/:id/alert", s.withSession(s.dismissAlert))
	sessions.Get("/:id/events", s.withSession(s.getEvents))
}

// App exposes the fiber app (tests use App().Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	s.logger.Info("Listening on http://%s", s.settings.ListenAddr)
	return s.app.Listen(s.settings.ListenAddr)
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
