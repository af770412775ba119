package main

import (
	"github.com/lmenendez/agora/config"
	"github.com/lmenendez/agora/models"
	"github.com/lmenendez/agora/notify"
	"github.com/lmenendez/agora/routes"
	"github.com/lmenendez/agora/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{}, &models.Forum{}, &models.Register{},
		&models.Topic{}, &models.Comment{}, &models.Notification{},
	)

	site := notify.Site{Name: cfg.SiteName, URL: cfg.SiteURL, StaticURL: cfg.StaticURL}
	pipeline := notify.NewPipeline(notify.Deps{
		DB:          db,
		Store:       notify.NewStore(db),
		Resolver:    notify.NewResolver(db),
		Gate:        notify.NewGate(db),
		Publisher:   notify.NewRedisPublisher(utils.GetRedis()),
		Mail:        notify.NewDispatcher(utils.SendMail, utils.Sugar),
		Photos:      notify.NewPhotoResolver(db, cfg.StaticURL),
		Attachments: utils.MediaStore{Root: cfg.MediaRoot},
		Site:        site,
		Log:         utils.Sugar,
	})

	r := routes.SetupRouter(db, pipeline)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
