// Package dig_container wires the API dependencies with go.uber.org/dig.
package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/academia/backend/apps/api/echo"
	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/enrollment"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	logsvc "github.com/academia/backend/services/logger"
	"github.com/academia/backend/storage/cache"
	"github.com/academia/backend/storage/database"
	inmemdb "github.com/academia/backend/storage/database/inmem"
	sqlxrepos "github.com/academia/backend/storage/database/sqlx"
)

// EngineInMem keeps every table in memory instead of connecting to a database.
const EngineInMem = "inmem"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	repositories struct {
		dig.Out
		Users       user.Repository
		Catalog     catalog.Repository
		Sections    section.Repository
		Enrollments enrollment.Repository
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       user.Service
		CatalogSvc    *catalog.Service
		SectionSvc    *section.Service
		EnrollmentSvc *enrollment.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}
)

func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB returns a nil *sqlx.DB when the tables are kept in memory.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == EngineInMem {
		loggerParam.Logger.Warn("Using the in-memory database: data is lost on shutdown")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(db); err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) repositories {
	if db == nil {
		mem := inmemdb.NewDB()
		return repositories{
			Users:       inmemdb.NewUserRepository(mem),
			Catalog:     inmemdb.NewCatalogRepository(mem),
			Sections:    inmemdb.NewSectionRepository(mem),
			Enrollments: inmemdb.NewEnrollmentRepository(mem),
		}
	}
	return repositories{
		Users:       sqlxrepos.NewUserRepository(db),
		Catalog:     sqlxrepos.NewCatalogRepository(db),
		Sections:    sqlxrepos.NewSectionRepository(db),
		Enrollments: sqlxrepos.NewEnrollmentRepository(db),
	}
}

// newDraftStore keeps drafts in Redis when an address is configured, in memory otherwise.
func newDraftStore(conf *core.Config, logger core.Logger) section.DraftStore {
	if conf.Redis.Addr == "" {
		return inmemdb.NewDraftStore()
	}
	client, err := cache.NewRedisClient(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return cache.NewDraftStore(client)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		UserSvc:       p.UserSvc,
		CatalogSvc:    p.CatalogSvc,
		SectionSvc:    p.SectionSvc,
		EnrollmentSvc: p.EnrollmentSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(logsvc.NewZap))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newDraftStore))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(catalog.NewService))
	must(c.Provide(section.NewService))
	must(c.Provide(enrollment.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
