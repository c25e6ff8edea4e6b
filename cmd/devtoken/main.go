package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/config"
	"github.com/zephy/zephy-api/internal/pkg/database"
	"github.com/zephy/zephy-api/internal/pkg/jwt"
)

// Development helper: checks that the schema is applied and prints a bearer
// token signed with SUPABASE_JWT_SECRET for local API calls.
//
//	go run ./cmd/devtoken [user-uuid] [email]
func main() {
	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run with ENV=production")
	}
	if cfg.SupabaseJWTSecret == "" {
		log.Fatal("SUPABASE_JWT_SECRET is required to sign a token")
	}

	userID := uuid.New()
	if len(os.Args) > 1 {
		parsed, err := uuid.Parse(os.Args[1])
		if err != nil {
			log.Fatalf("Invalid user id %q: %v", os.Args[1], err)
		}
		userID = parsed
	}
	email := "student@zephy.local"
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	checkSchema(cfg.DatabaseURL)

	verifier := jwt.NewVerifier(cfg.SupabaseJWTSecret, 24*time.Hour)
	token, err := verifier.GenerateAccessToken(userID, email)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println("--- Dev token ---")
	fmt.Printf("User:  %s (%s)\n", userID, email)
	fmt.Printf("Token: %s\n", token)
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:%s/api/fitcheck/history\n", token, cfg.Port)
}

var requiredTables = []string{
	"community_posts", "post_replies", "post_reactions", "reply_reactions",
	"polls", "poll_votes", "fitcheck_assessments", "chat_sessions", "chat_messages",
}

// checkSchema reports missing tables. A database that cannot be reached is
// only a warning; the token is still useful against another environment.
func checkSchema(databaseURL string) {
	db, err := database.NewPostgres(databaseURL)
	if err != nil {
		log.Printf("WARNING: database unreachable, skipping schema check: %v", err)
		return
	}
	defer database.ClosePostgres(db)

	var present []string
	query := `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`
	if err := db.Select(&present, query); err != nil {
		log.Printf("WARNING: failed to list tables: %v", err)
		return
	}

	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}

	fmt.Println("--- Schema ---")
	missing := 0
	for _, name := range requiredTables {
		if have[name] {
			fmt.Printf("ok       %s\n", name)
			continue
		}
		fmt.Printf("MISSING  %s\n", name)
		missing++
	}
	if missing > 0 {
		fmt.Println("Apply migrations/001_init.sql before starting the API.")
	}
	fmt.Println("--------------")
}
