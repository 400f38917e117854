package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ricardomaia/fundeira/internal/audit"
	"github.com/ricardomaia/fundeira/internal/common"
	"github.com/ricardomaia/fundeira/internal/config"
	"github.com/ricardomaia/fundeira/internal/finance"
	"github.com/ricardomaia/fundeira/internal/handlers/api"
	"github.com/ricardomaia/fundeira/internal/i18n"
	"github.com/ricardomaia/fundeira/internal/middlewares"
	"github.com/ricardomaia/fundeira/internal/notify"
	"github.com/ricardomaia/fundeira/internal/render"
	"github.com/ricardomaia/fundeira/internal/store"
	"github.com/ricardomaia/fundeira/internal/users"
	"github.com/ricardomaia/fundeira/model"
	"github.com/ricardomaia/fundeira/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "fundeira - crowdfunding user directory and lifecycle service"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if dbConfig.ReplicaDsn != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{mysql.Open(dbConfig.ReplicaDsn)},
			Policy:   dbresolver.RandomPolicy{},
		})
		if err := db.Use(resolver); err != nil {
			slog.Error("Failed to register read replica", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := db.AutoMigrate(model.Models...); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

// mustInitCacheStorage prefers redis and falls back to an in-process store
// when no redis URL is configured.
func mustInitCacheStorage(redisCfg config.RedisConfig) (store.Storage, *redis.Storage) {
	if redisCfg.URL == "" {
		slog.Warn("No redis configured, using in-memory cache storage")
		return store.NewMemoryStorage(), nil
	}
	redisStorage := redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
	return store.NewRedisStorage(redisStorage.Conn()), redisStorage
}

func mustInitMailSender(mailCfg config.MailConfig) notify.MailSender {
	if mailCfg.Backend != "smtp" {
		slog.Error("Unsupported mail sender backend", "backend", mailCfg.Backend)
		os.Exit(1)
	}
	sender, err := notify.NewSMTPMailSender(notify.SMTPConfig{
		Host:     mailCfg.SMTP.Host,
		Port:     mailCfg.SMTP.Port,
		Username: mailCfg.SMTP.Username,
		Password: mailCfg.SMTP.Password,
		TLS:      mailCfg.SMTP.TLS,
		CertFile: mailCfg.SMTP.CertFile,
		KeyFile:  mailCfg.SMTP.KeyFile,
		CAFile:   mailCfg.SMTP.CAFile,
	}, mailCfg.From)
	if err != nil {
		slog.Error("Failed to initialize SMTP mail sender", "error", err)
		os.Exit(1)
	}
	return sender
}

func setupAPIRoutes(router fiber.Router, usersHandler *api.UsersHandler) {
	v1 := router.Group("/api")
	v1.Post("/users", usersHandler.PostRegister)
	v1.Get("/users", usersHandler.GetUsers)
	v1.Get("/users/:id", usersHandler.GetUser)
	v1.Patch("/users/:id", usersHandler.PatchUser)
	v1.Delete("/users/:id", usersHandler.DeleteUser)
	v1.Post("/users/:id/approve", usersHandler.PostApprove)
	v1.Get("/users/:id/credits", usersHandler.GetCredits)
	v1.Post("/users/reactivate", usersHandler.PostReactivate)
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))

	globalVars := map[string]interface{}{
		"siteName": config.SiteName,
		"baseURL":  config.BaseURL,
	}
	if err := render.Initialize(globalVars, config.TemplateDir); err != nil {
		slog.Error("Failed to initialize template renderer", "error", err)
		return err
	}

	translator, err := i18n.NewManager(config.DefaultLocale)
	if err != nil {
		slog.Error("Failed to load locales", "error", err)
		return err
	}

	mailSender := mustInitMailSender(config.Mail)
	db := mustInitDatabase(config.MySQL)
	cacheStorage, redisStorage := mustInitCacheStorage(config.Redis)
	audit.Initialize(audit.NewAuditEventRepository(db))

	// repositories
	var (
		userRepo    = users.NewUserRepository(db)
		contribRepo = users.NewContributionRepository(db)
		totalsRepo  = finance.NewUserTotalRepository(db)
	)

	// services
	var (
		summaryService = finance.NewSummaryService(totalsRepo, cacheStorage)
		notifier       = notify.NewMailDispatcher(userRepo, summaryService, mailSender, translator, config.SiteName, config.BaseURL)
		userService    = users.NewUserService(userRepo, contribRepo, notifier)
	)

	usersHandler := api.NewUsersHandler(userService, summaryService, translator, config.BaseURL)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, usersHandler)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	var rdb goredis.UniversalClient
	if redisStorage != nil {
		rdb = redisStorage.Conn()
	}
	go common.StartHealthCheckServer(healthCheckCtx, done, rdb, db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
