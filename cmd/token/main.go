// Command token mints a bearer token for a wallet address, for local testing of
// authenticated BalanceService procedures.
//
//	JWT_SECRET=... go run ./cmd/token -address 0x5ecf...
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/suisplit/internal/auth"
	"github.com/mmynk/suisplit/internal/config"
	"github.com/mmynk/suisplit/pkg/logging"
)

func main() {
	address := flag.String("address", "", "wallet address to mint a token for")
	flag.Parse()

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.AuthEnabled() {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).Generate(*address)
	if err != nil {
		slog.Error("Failed to mint token", "address", *address, "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
