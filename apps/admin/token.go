package main

import (
	"fmt"
	"time"

	echoapi "github.com/MarcosBaez42/automatizacion-sofia/apps/api/echo"
)

func (cli *commandLine) token(subject string, ttl time.Duration) error {
	ss, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, subject, ttl))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ss)
	return nil
}
