package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf  *core.Config
	db    *sqlx.DB
	maint fiche.MaintenanceRepository
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]            - run a goose migration command (up, down, status, version, ...)")
	fmt.Fprintln(cli.out, "  initgraded                           - set graded=false on schedules without a value and print totals")
	fmt.Fprintln(cli.out, "  token -subject NAME [-ttl DURATION]  - print a bearer token for the notifications API")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenSubject := tokenCmd.String("subject", "", "Who the token is issued to.")
	tokenTTL := tokenCmd.Duration("ttl", 30*24*time.Hour, "How long the token is valid.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "initgraded":
		return cli.initGraded()
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenSubject == "" || *tokenTTL <= 0 {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}
