// Command devtoken issues a signed bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"capstone/internal/config"
	"capstone/internal/middleware"
)

func main() {
	id := flag.Uint("id", 0, "Student, supervisor or admin account ID")
	role := flag.String("role", string(middleware.RoleStudent), "student, supervisor or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run against a production configuration")
	}
	if *id == 0 {
		log.Fatal("-id is required")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, *id, middleware.Role(*role), *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
