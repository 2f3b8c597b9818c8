package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"contacthub/config"
	"contacthub/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// seeded account is pre-verified so it can log in right away
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, avatar_url, verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash, helpers.GravatarURL(email)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	contacts := []struct {
		name, email, phone string
		favorite           bool
	}{
		{"Allen Raymond", "nulla.ante@vestibul.co.uk", "(992) 914-3792", false},
		{"Chaim Lewis", "dui.in@egetlacus.ca", "(294) 840-6685", false},
		{"Kennedy Lane", "mattis.Cras@nonenimMauris.net", "(542) 451-7038", true},
	}
	for _, c := range contacts {
		if _, err := db.Exec(`
			INSERT INTO contacts (owner_id, name, email, phone, favorite)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, id, c.name, c.email, c.phone, c.favorite); err != nil {
			log.Fatalf("failed to seed contact %s: %v", c.name, err)
		}
	}
	fmt.Printf("seeded %d contacts for %s\n", len(contacts), email)
}
