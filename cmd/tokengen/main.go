package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/arnavshah/shiftboard/pkg/auth"
	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/models"
)

// Mints a bearer token for local testing without going through /auth/login.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: tokengen <staffID> <staff|manager|admin> [username]")
		os.Exit(1)
	}

	staffID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil || staffID <= 0 {
		fmt.Println("Error: staffID must be a positive integer")
		os.Exit(1)
	}
	role := models.ParseRole(os.Args[2])
	username := "dev"
	if len(os.Args) > 3 {
		username = os.Args[3]
	}

	cfg, err := config.Load(nil, "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Println("Error: JWT_SECRET not found in .env")
		os.Exit(1)
	}

	token, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).CreateToken(staffID, username, role)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Token for staff %d (%s):\n%s\n", staffID, role, token)
}
