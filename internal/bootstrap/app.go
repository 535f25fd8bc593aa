package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/applications"
	googleauth "hirepath-backend/internal/auth"
	"hirepath-backend/internal/documents"
	"hirepath-backend/internal/email"
	"hirepath-backend/internal/formatting"
	"hirepath-backend/internal/generator"
	"hirepath-backend/internal/jobs"
	"hirepath-backend/internal/payments"
	"hirepath-backend/internal/queue"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/config"
	"hirepath-backend/internal/shared/server"
	"hirepath-backend/internal/shared/storage/db"
	"hirepath-backend/internal/shared/storage/object"
	localstore "hirepath-backend/internal/shared/storage/object/local"
	s3store "hirepath-backend/internal/shared/storage/object/s3"
	"hirepath-backend/internal/tokens"
	"hirepath-backend/internal/users"
	"hirepath-backend/internal/wizard"
)

// App holds the wired dependencies shared by the API and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	Mailer email.Mailer

	UsersRepo        users.Repo
	TokensRepo       tokens.Repo
	DocumentsRepo    documents.DocumentsRepo
	ResumesRepo      resumes.Repo
	WizardStore      wizard.Store
	PaymentsRepo     payments.Repo
	JobsRepo         jobs.Repo
	ApplicationsRepo applications.Repo

	UsersService        *users.Service
	TokensService       *tokens.Service
	DocumentsService    *documents.Service
	ResumesService      *resumes.Service
	GeneratorService    *generator.Service
	PaymentsService     *payments.Service
	JobsService         *jobs.Service
	ApplicationsService *applications.Service
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	mailer, err := buildMailer(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Mailer: mailer,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Users:        users.NewHandler(app.UsersService),
		UsersAdmin:   users.NewAdminHandler(app.UsersService),
		Tokens:       tokens.NewHandler(app.TokensService),
		GoogleAuth:   app.GoogleAuth,
		Documents:    documents.NewHandler(app.DocumentsService),
		Resumes:      resumes.NewHandler(app.ResumesService),
		Generator:    generator.NewHandler(app.GeneratorService, app.PaymentsService),
		Payments:     payments.NewHandler(app.PaymentsService, cfg.WebhookSecret),
		Jobs:         jobs.NewHandler(app.JobsService),
		Applications: applications.NewHandler(app.ApplicationsService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("HP_SQS_QUEUE_URL")) == "" {
		return queue.NewMemoryClient(), nil
	}
	return queue.NewSQSClient(ctx)
}

func buildMailer(cfg config.Config) (email.Mailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return email.NewMemoryMailer(), nil
	}
	return email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.TokensRepo = &tokens.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.WizardStore = &wizard.PGStore{DB: app.DB}
		app.PaymentsRepo = &payments.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.TokensRepo = tokens.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.WizardStore = wizard.NewMemoryStore()
		app.PaymentsRepo = payments.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.TokensService = tokens.NewService(app.TokensRepo, app.UsersRepo, app.Mailer, cfg.UIBaseURL)
	app.UsersService.Verifier = app.TokensService

	app.DocumentsService = &documents.Service{
		Store: app.Store,
		Repo:  app.DocumentsRepo,
	}

	formatter, err := buildFormatter(cfg)
	if err != nil {
		return err
	}
	app.GeneratorService = &generator.Service{
		Resumes:   app.ResumesRepo,
		Wizard:    app.WizardStore,
		Formatter: formatter,
		Store:     app.Store,
	}

	app.ResumesService = &resumes.Service{
		Repo:      app.ResumesRepo,
		Wizard:    app.WizardStore,
		Generator: app.GeneratorService,
	}

	checkout, err := buildCheckout(cfg)
	if err != nil {
		return err
	}
	app.PaymentsService = &payments.Service{
		Repo:      app.PaymentsRepo,
		Resumes:   app.ResumesRepo,
		Wizard:    app.WizardStore,
		Checkout:  checkout,
		Generator: app.GeneratorService,
		PublicURL: cfg.PublicBaseURL,
	}

	app.JobsService = &jobs.Service{Repo: app.JobsRepo}

	app.ApplicationsService = &applications.Service{
		Repo:      app.ApplicationsRepo,
		Jobs:      app.JobsRepo,
		Resumes:   app.ResumesRepo,
		Queue:     app.Queue,
		Documents: app.DocumentsService,
	}

	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIBaseURL,
		app.UsersService,
	)

	return nil
}

func buildFormatter(cfg config.Config) (formatting.Formatter, error) {
	if strings.TrimSpace(cfg.FormatterBaseURL) == "" {
		return formatting.NewLocalRenderer(), nil
	}
	return formatting.NewClient(cfg.FormatterBaseURL)
}

func buildCheckout(cfg config.Config) (payments.CheckoutClient, error) {
	if strings.TrimSpace(cfg.CheckoutBaseURL) == "" {
		return payments.NewMemoryCheckout(), nil
	}
	return payments.NewHTTPCheckout(cfg.CheckoutBaseURL, cfg.CheckoutSecret)
}
