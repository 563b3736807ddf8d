package main

import (
	"log"

	"github.com/Codewithswappy/UMSystem-sub001/config"
	"github.com/Codewithswappy/UMSystem-sub001/database"
)

// Standalone seeder: creates the admin account, the subject catalogue and
// default settings without starting the API server.
func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.RunSeeds(store.DB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
