package main

import (
	"github.com/yuchia/temple-checkin/config"
	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/routes"
	"github.com/yuchia/temple-checkin/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Temple{}, &models.Amulet{}, &models.Checkin{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
