package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/apps/stub/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/services/logger"
)

func main() {
	logger := logsvc.NewConsoleLogger(log.New(os.Stderr, "stub ", log.LstdFlags))

	users := echostub.NewDirectory()
	if err := users.Seed(); err != nil {
		log.Fatal(err)
	}

	app := echostub.NewServer(
		&echostub.Options{
			Addr:   core.Conf.Server.Addr,
			Users:  users,
			Logger: logger,
		},
	)
	app.Start()
}
