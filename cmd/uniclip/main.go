package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/uniclip/internal/app"
	"github.com/dmitrijs2005/uniclip/internal/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	a.Run(ctx)

}
