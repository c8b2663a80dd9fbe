// The seed binary populates the database with demo data.
package main

import (
	"flag"
	"log"

	"traveldesk/internal/config"
	"traveldesk/internal/database"
	"traveldesk/internal/seed"
)

func main() {
	users := flag.Int("users", 5, "number of regular users to create")
	requests := flag.Int("requests", 4, "travel requests per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, *users, *requests); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Database seeded")
}
