package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rpsls_wager/internal/db"
	"rpsls_wager/internal/game"
	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/repository"
	"rpsls_wager/internal/service"

	"github.com/joho/godotenv"
)

// issue_token prints a bearer token for a party and can fund its account.
func main() {
	_ = godotenv.Load()

	party := flag.String("party", "", "party identifier to put in the token")
	ttl := flag.Duration("ttl", service.DefaultTokenTTL, "token lifetime")
	fund := flag.Int64("fund", 0, "credit this amount to the party's account (needs DATABASE_URL)")
	flag.Parse()

	if *party == "" {
		fmt.Fprintln(os.Stderr, "usage: issue_token -party <id> [-ttl 24h] [-fund N]")
		os.Exit(2)
	}

	if err := service.InitJWT(os.Getenv("JWT_SECRET")); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	token, err := service.GenerateJWT(*party, *ttl)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if *fund > 0 && dsn == "" {
		logger.Fatal("DATABASE_URL not set; cannot fund account")
	}
	if dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool := db.Connect(ctx, dsn)
		defer pool.Close()

		audit := service.NewAuditService(repository.NewAuditRepository(pool))
		games := service.NewGameService(repository.NewGameStore(pool), audit, nil, service.DefaultLimits)
		if *fund > 0 {
			balance, err := games.Deposit(ctx, game.Party(*party), *fund)
			if err != nil {
				logger.Fatal("fund account failed", "party", *party, "error", err)
			}
			logger.Info("account funded", "party", *party, "balance", balance)
		}
		audit.LogTokenIssued(ctx, game.Party(*party), "", "issue_token")
	}

	fmt.Println(token)
}
