package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/prediag/inference-service/internal/config"
	"github.com/prediag/inference-service/internal/tokens"
)

// tokengen mints a service JWT for calling the protected diagnostic
// endpoints. Reads JWT_SECRET from the environment (or .env).
func main() {
	subject := flag.String("sub", "business-logic", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, err := tokens.GenerateServiceToken(cfg, *subject, *ttl)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token)
}
