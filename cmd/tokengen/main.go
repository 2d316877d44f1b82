// Command tokengen issues an operator bearer token signed with the
// configured JWT secret, for handing out to operator tooling.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/spec-kit/dialog-engine/internal/auth"
	"github.com/spec-kit/dialog-engine/internal/config"
)

func main() {
	operatorID := flag.String("operator", "", "operator id to embed as the token subject")
	flag.Parse()

	if *operatorID == "" {
		log.Fatal("usage: tokengen -operator <id>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	token, expiresAt, err := tokenManager.GenerateToken(*operatorID)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires at: %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
}
