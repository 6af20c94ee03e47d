package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"notesquest-be/internal/model"
	"notesquest-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.Document{},
		&model.Summary{},
		&model.Quiz{},
		&model.FlashcardSet{},
		&model.ChatSession{},
		&model.ChatMessage{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("Migration complete.")
}
