package cmd

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	auditApp "github.com/jivitsolutions/jivit-site/audit/application"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	auditRepo "github.com/jivitsolutions/jivit-site/audit/repository"
	catalogApp "github.com/jivitsolutions/jivit-site/catalog/application"
	catalogRepo "github.com/jivitsolutions/jivit-site/catalog/repository"
	coreconfig "github.com/jivitsolutions/jivit-site/core/config"
	coreDB "github.com/jivitsolutions/jivit-site/core/database"
	settingsApp "github.com/jivitsolutions/jivit-site/core/settings/application"
	settingsInfra "github.com/jivitsolutions/jivit-site/core/settings/infrastructure"
	domainAssistant "github.com/jivitsolutions/jivit-site/domains/assistant"
	domainCache "github.com/jivitsolutions/jivit-site/domains/cache"
	domainDashboard "github.com/jivitsolutions/jivit-site/domains/dashboard"
	"github.com/jivitsolutions/jivit-site/infrastructure/valkey"
	"github.com/jivitsolutions/jivit-site/integrations/gemini"
	"github.com/jivitsolutions/jivit-site/integrations/webhook"
	leadsApp "github.com/jivitsolutions/jivit-site/leads/application"
	leadsRepo "github.com/jivitsolutions/jivit-site/leads/repository"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	"github.com/jivitsolutions/jivit-site/pkg/jobpool"
	"github.com/jivitsolutions/jivit-site/pkg/media"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
	"github.com/jivitsolutions/jivit-site/ui/websocket"
	"github.com/jivitsolutions/jivit-site/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	// Infrastructure
	db       *gorm.DB
	vkClient *valkey.Client
	serverID string
	tiers    *cache.Tiers
	cacheBus *cache.Bus
	pool     *jobpool.Pool
	store    *media.Store
	hub      *websocket.Hub

	appCtx    context.Context
	appCancel context.CancelFunc
	stopOnce  sync.Once

	// Services
	auditSvc    *auditApp.Service
	catalogSvc  *catalogApp.Catalog
	settingsSvc *settingsApp.SettingsService
	leadsSvc    *leadsApp.Service

	// Usecase
	cacheUsecase     domainCache.ICacheUsecase
	dashboardUsecase domainDashboard.IDashboardUsecase
	assistantUsecase domainAssistant.IAssistantUsecase

	// Flag values, applied over the environment in initEnvConfig.
	flagPort         string
	flagDebug        bool
	flagDBDriver     string
	flagBasicAuth    []string
	flagValkey       bool
	flagCacheTTL     time.Duration
	flagVolatileTTL  time.Duration
	flagWorkers      int
	flagWorkersQueue int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jivit-site",
	Short: "JivIT marketing site and back office API",
	Long: `Backend for the JivIT marketing site: services, careers, student programs and blog
content served through an expiring read-through cache, plus the admin back office.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	// Then initialize other components
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig loads configuration from environment variables, then lets
// explicitly passed flags win.
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] failed to load configuration: %v", err)
	}

	// viper also sees keys that only live in .env
	if envPort := viper.GetString("app_port"); envPort != "" && os.Getenv("APP_PORT") == "" {
		cfg.App.Port = envPort
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("port") {
		cfg.App.Port = flagPort
	}
	if flags.Changed("debug") {
		cfg.App.Debug = flagDebug
	}
	if flags.Changed("db-driver") {
		cfg.Database.Driver = flagDBDriver
	}
	if flags.Changed("basic-auth") {
		cfg.App.BasicAuth = flagBasicAuth
	}
	if flags.Changed("valkey") {
		cfg.Database.ValkeyEnabled = flagValkey
	}
	if flags.Changed("cache-ttl") {
		cfg.Cache.ReferenceTTL = flagCacheTTL
	}
	if flags.Changed("volatile-cache-ttl") {
		cfg.Cache.VolatileTTL = flagVolatileTTL
	}
	if flags.Changed("workers") {
		cfg.WorkerPool.Size = flagWorkers
	}
	if flags.Changed("workers-queue") {
		cfg.WorkerPool.QueueSize = flagWorkersQueue
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"3000",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"sqlite",
		`database driver --db-driver <sqlite|postgres> | example: --db-driver="postgres"`,
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&flagBasicAuth,
		"basic-auth", "b",
		nil,
		"admin basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagValkey,
		"valkey", "",
		false,
		"use Valkey for the reference cache tier and the invalidation bus --valkey <true/false>",
	)
	rootCmd.PersistentFlags().DurationVarP(
		&flagCacheTTL,
		"cache-ttl", "",
		10*time.Minute,
		`reference tier TTL --cache-ttl <duration> | example: --cache-ttl=15m`,
	)
	rootCmd.PersistentFlags().DurationVarP(
		&flagVolatileTTL,
		"volatile-cache-ttl", "",
		5*time.Minute,
		`volatile tier TTL --volatile-cache-ttl <duration> | example: --volatile-cache-ttl=30s`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&flagWorkers,
		"workers", "",
		4,
		`number of background workers --workers <number> | example: --workers=8`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&flagWorkersQueue,
		"workers-queue", "",
		250,
		`queue size per background worker --workers-queue <number> | example: --workers-queue=500`,
	)
}

func initApp() {
	cfg := coreconfig.Global
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	//preparing folder if not exist
	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics); err != nil {
		logrus.Errorln(err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())
	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)

	var err error
	db, err = coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[DATABASE] failed to connect: %v", err)
	}

	// Valkey is optional; without it every tier is process local.
	var persistent cache.Store
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[VALKEY] unavailable, falling back to memory cache")
			vkClient = nil
		} else {
			persistent = cache.NewValkeyStore(vkClient)
			logrus.Infof("[VALKEY] connected to %s", cfg.Database.ValkeyAddress)
		}
	}

	if cfg.Cache.Enabled {
		tiers = cache.NewTiers(cache.TierOptions{
			Namespace:    cfg.Cache.Namespace,
			ReferenceTTL: cfg.Cache.ReferenceTTL,
			VolatileTTL:  cfg.Cache.VolatileTTL,
			MemoryQuota:  cfg.Cache.MemoryQuotaBytes,
		}, persistent)
	} else {
		logrus.Warn("[CACHE] disabled, every read goes to the database")
		tiers = cache.Disabled()
	}
	cacheBus = cache.NewBus(vkClient, cfg.Cache.BusChannel, serverID)
	cacheBus.Attach(tiers)
	go cacheBus.Run(appCtx)

	pool = jobpool.New(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(appCtx)

	store = media.NewStore(media.Options{
		StaticsDir:     cfg.Paths.Statics,
		BasePath:       cfg.App.BasePath,
		MaxDocBytes:    cfg.Uploads.MaxResumeBytes,
		MaxImageBytes:  cfg.Uploads.MaxImageBytes,
		ThumbnailWidth: cfg.Uploads.ThumbnailWidth,
	})

	// Live admin feed
	hub = websocket.NewHub(vkClient, serverID)
	cacheBus.Listen(hub.CacheListener())

	// The audit trail feeds both the dashboard and the live feed.
	auditSvc = auditApp.NewService(auditRepo.NewActivityGormRepository(db), pool)
	auditSvc.OnRecorded(hub.ActivityListener())
	auditSvc.OnRecorded(func(auditDomain.ActivityLog) {
		tiers.InvalidateFamily(appCtx, cache.FamilyDashboard)
	})

	catalogSvc = catalogApp.NewCatalog(catalogApp.Repositories{
		Services: catalogRepo.NewServiceGormRepository(db),
		Jobs:     catalogRepo.NewJobGormRepository(db),
		Programs: catalogRepo.NewProgramGormRepository(db),
		Blogs:    catalogRepo.NewBlogGormRepository(db),
	}, tiers, auditSvc)

	settingsSvc = settingsApp.NewSettingsService(settingsInfra.NewSiteSettingsGormRepository(db), tiers, auditSvc)

	leadsSvc = leadsApp.NewService(leadsRepo.NewApplicationGormRepository(db), leadsApp.Options{
		Sources:  catalogSvc,
		Settings: settingsSvc,
		Uploads:  store,
		Notifier: webhook.New(webhook.Options{
			URLs:    cfg.Webhooks.LeadURLs,
			Secret:  cfg.Webhooks.Secret,
			Timeout: cfg.Webhooks.Timeout,
			Retries: cfg.Webhooks.Retries,
		}),
		Pool:  pool,
		Audit: auditSvc,
		Cache: tiers,
	})

	cacheUsecase = usecase.NewCacheService(tiers)
	dashboardUsecase = usecase.NewDashboardService(usecase.DashboardSources{
		Services:     catalogSvc.Services,
		Jobs:         catalogSvc.Jobs,
		Programs:     catalogSvc.Programs,
		Blogs:        catalogSvc.Blogs,
		Applications: leadsSvc,
		Activity:     auditSvc,
	}, tiers)

	var generator domainAssistant.Generator
	if cfg.Assistant.GeminiAPIKey != "" {
		client, err := gemini.New(appCtx, gemini.Config{APIKey: cfg.Assistant.GeminiAPIKey, Model: cfg.Assistant.Model})
		if err != nil {
			logrus.WithError(err).Warn("[ASSISTANT] gemini unavailable, using keyword replies only")
		} else {
			generator = client
		}
	}
	assistantUsecase = usecase.NewAssistantService(usecase.AssistantSources{
		Services: catalogSvc.Services,
		Jobs:     catalogSvc.Jobs,
		Programs: catalogSvc.Programs,
		Settings: settingsSvc,
	}, generator)
}

// initSchema creates every table the application owns.
func initSchema(ctx context.Context) error {
	for _, fn := range []func(context.Context) error{
		catalogSvc.InitSchema,
		settingsInfra.NewSiteSettingsGormRepository(db).InitSchema,
		leadsRepo.NewApplicationGormRepository(db).InitSchema,
		auditRepo.NewActivityGormRepository(db).InitSchema,
	} {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp drains the worker pool and closes shared connections. It blocks
// until queued jobs are done and only runs once.
func StopApp() {
	stopOnce.Do(stopApp)
}

func stopApp() {
	logrus.Info("[APP] Stopping application...")

	if pool != nil {
		pool.Stop()
	}
	if appCancel != nil {
		appCancel()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}

func basicAuthUsers(credentials []string) map[string]string {
	account := make(map[string]string)
	for _, basicAuth := range credentials {
		ba := strings.SplitN(basicAuth, ":", 2)
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}
	return account
}
