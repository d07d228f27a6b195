// Command sofia-job checks the grading reports of overdue fiches on Sofía Plus.
package main

import (
	"log"
	"os"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	logsvc "github.com/MarcosBaez42/automatizacion-sofia/services/logger"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	std := log.New(os.Stdout, "JOB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	a := &app{conf: conf, out: os.Stdout, std: std, logger: logger}
	err = newRootCmd(a).Execute()
	a.close()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
