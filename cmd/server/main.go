package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/videonotes/internal/buildinfo"
	"github.com/dmitrijs2005/videonotes/internal/server"
	"github.com/dmitrijs2005/videonotes/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
