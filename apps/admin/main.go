package main

import (
	"fmt"
	"os"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	logsvc "github.com/academia/backend/services/logger"
	"github.com/academia/backend/storage/database"
	inmemdb "github.com/academia/backend/storage/database/inmem"
	sqlxrepos "github.com/academia/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)
	defer logger.Sync()

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// set up services
	usrRepo := sqlxrepos.NewUserRepository(db)
	mailSvc := emailsvc.NewService(conf, logger)
	usrSvc := user.NewService(usrRepo, mailSvc)
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))
	sectionSvc := section.NewService(sqlxrepos.NewSectionRepository(db), inmemdb.NewDraftStore(), catalogSvc, usrSvc, mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrRepo:    usrRepo,
		sectionSvc: sectionSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("%s failed: %v", cli.command(os.Args), err), err)
		}
		logger.Sync()
		os.Exit(1)
	}
}
