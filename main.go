package main

import (
	"github.com/hypermark/blogsearch/cache"
	"github.com/hypermark/blogsearch/config"
	"github.com/hypermark/blogsearch/models"
	"github.com/hypermark/blogsearch/routes"
	"github.com/hypermark/blogsearch/search"
	"github.com/hypermark/blogsearch/services"
	"github.com/hypermark/blogsearch/store"
	"github.com/hypermark/blogsearch/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.BlogPost{}, &models.Tag{}, &models.PostTag{})

	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		utils.Sugar.Fatalf("failed to open search index: %v", err)
	}
	defer index.Close()

	kv, err := cache.New(cfg, utils.Sugar)
	if err != nil {
		utils.Sugar.Fatalf("failed to set up cache: %v", err)
	}
	defer kv.Close()

	svc := services.NewPostService(store.New(db), index, kv, utils.Sugar)

	r := routes.SetupRouter(svc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
