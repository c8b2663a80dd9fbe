// The worker binary drains the mail notification queue without serving
// HTTP. Run it alongside the API to scale delivery independently.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"traveldesk/internal/cache"
	"traveldesk/internal/config"
	"traveldesk/internal/notifications"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is required for the mail worker")
	}

	queue := notifications.NewQueue(rdb, notifications.NewMailer(cfg), cfg.MailMaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Mail worker started")
	queue.Run(ctx)
	log.Println("Mail worker stopped")
}
