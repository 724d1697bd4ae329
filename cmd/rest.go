package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	catalogRest "github.com/jivitsolutions/jivit-site/catalog/adapter/rest"
	coreconfig "github.com/jivitsolutions/jivit-site/core/config"
	coreDB "github.com/jivitsolutions/jivit-site/core/database"
	domainHealth "github.com/jivitsolutions/jivit-site/domains/health"
	leadsRest "github.com/jivitsolutions/jivit-site/leads/adapter/rest"
	"github.com/jivitsolutions/jivit-site/ui/rest"
	"github.com/jivitsolutions/jivit-site/ui/rest/middleware"
	"github.com/jivitsolutions/jivit-site/ui/websocket"
	"github.com/jivitsolutions/jivit-site/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the site and back office API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	if err := initSchema(appCtx); err != nil {
		logrus.Fatalf("[DATABASE] failed to prepare schema: %v", err)
	}

	bodyLimit := cfg.Uploads.MaxResumeBytes
	if cfg.Uploads.MaxImageBytes > bodyLimit {
		bodyLimit = cfg.Uploads.MaxImageBytes
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		// Room for the multipart envelope around the largest upload.
		BodyLimit:             int(bodyLimit) + 1<<20,
		Network:               "tcp",
		AppName:               cfg.App.Name,
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	}

	// Configure proxy settings if trusted proxies are specified
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	// Security: RequestID for audit trails
	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-User, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	// Security: Hardened Headers
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000, // 1 Year
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		// Uploaded images are embedded cross-origin by the marketing site.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required for the back office; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}
	account := basicAuthUsers(cfg.App.BasicAuth)

	// Uploaded resumes, documents and images
	app.Static(cfg.App.BasePath+"/statics", cfg.Paths.Statics)

	root := app.Group(cfg.App.BasePath)
	publicGroup := root.Group("/api/public")
	adminGroup := root.Group("/api/admin")

	// Apply BasicAuth ONLY to the admin group
	adminGroup.Use(basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	}))
	adminGroup.Use(middleware.Actor())

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	// Site content and leads
	catalogRest.InitRestCatalog(publicGroup, adminGroup, catalogSvc)
	leadsRest.InitRestLeads(publicGroup, adminGroup, leadsSvc)
	rest.InitRestSettings(publicGroup, adminGroup, settingsSvc)
	rest.InitRestAssistant(publicGroup, assistantUsecase)

	// Back office
	rest.InitRestDashboard(adminGroup, dashboardUsecase)
	rest.InitRestActivity(adminGroup, auditSvc)
	rest.InitRestMedia(adminGroup, store)
	rest.InitRestCache(adminGroup, cacheUsecase)
	rest.InitRestWorkerPool(adminGroup, pool)

	rest.InitRestHealth(root, usecase.NewHealthService(healthProbes()...))

	// Websocket
	websocket.RegisterRoutes(adminGroup, hub)
	go hub.Run(appCtx)

	// 404 Handler for the API groups
	root.All("/api/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}

	// Listen returns once Shutdown has closed the listener; drain queued
	// audit and webhook jobs before main exits.
	StopApp()
}

func healthProbes() []domainHealth.Probe {
	valkeyProbe := domainHealth.Probe{Name: "valkey"}
	if vkClient != nil {
		valkeyProbe.Check = vkClient.Ping
		valkeyProbe.Details = func() map[string]any {
			return map[string]any{"connected": vkClient.IsConnected(), "server_id": serverID}
		}
	}

	return []domainHealth.Probe{
		{
			Name: "database",
			Check: func(context.Context) error {
				return coreDB.Ping(db)
			},
			Details: func() map[string]any {
				return map[string]any{"driver": coreconfig.Global.Database.Driver}
			},
		},
		valkeyProbe,
		{
			Name: "worker_pool",
			Check: func(context.Context) error {
				return nil
			},
			Details: func() map[string]any {
				stats := pool.GetStats()
				return map[string]any{
					"workers":          stats.NumWorkers,
					"total_dispatched": stats.TotalDispatched,
					"total_dropped":    stats.TotalDropped,
					"total_processed":  stats.TotalProcessed,
					"total_errors":     stats.TotalErrors,
				}
			},
		},
		{
			Name: "live_feed",
			Check: func(context.Context) error {
				return nil
			},
			Details: func() map[string]any {
				return map[string]any{"clients": hub.Clients()}
			},
		},
	}
}
