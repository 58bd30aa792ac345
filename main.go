package main

import (
	"context"
	"log"
	"net/http"

	"github.com/rs/cors"

	"blogread/api/router"
	"blogread/cache"
	"blogread/config"
	"blogread/db"
	"blogread/eventbus"
	"blogread/logger"
	"blogread/repositories"
	"blogread/services"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	c := cache.New(cfg)
	if err := c.Ping(ctx); err != nil {
		log.Fatal("failed to connect to Redis:", err)
	}
	defer c.Close()

	var bus eventbus.EventBus = eventbus.NoopBus{}
	if cfg.Kafka.Enabled {
		kb, err := eventbus.NewKafkaEventBus(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatal("failed to initialize Kafka producer:", err)
		}
		bus = kb
	}
	defer bus.Close()

	postRepo := repositories.NewPostRepository(db.Database(), c)
	metaRepo := repositories.NewPostMetaRepository(db.Database())
	categoryRepo := repositories.NewCategoryRepository(db.Database(), c)
	tagRepo := repositories.NewTagRepository(db.Database(), c)
	authorRepo := repositories.NewAuthorRepository(db.Database(), c)

	svc := services.NewPostService(postRepo, metaRepo, categoryRepo, tagRepo, authorRepo, bus)
	svc.SearchCorpusGuard = cfg.Search.MaxCorpusSize

	r := router.New(svc)
	handler := cors.Default().Handler(r)

	logger.Log.Infof("listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
