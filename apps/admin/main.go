package main

import (
	"log"
	"os"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/storage/database"
	sqlxrepos "github.com/MarcosBaez42/automatizacion-sofia/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		conf:  conf,
		db:    db,
		maint: sqlxrepos.NewScheduleRepository(db),
		out:   os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
