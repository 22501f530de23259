// Command seed creates a cloud profile and prints a dashboard session cookie
// for it. Handy for local testing: the web dashboard's real sign-in flow
// lives outside this repository.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/common"
	"github.com/dmitrijs2005/videonotes/internal/flagx"
	"github.com/dmitrijs2005/videonotes/internal/server/config"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/videonotes/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	cfg := config.LoadConfig()

	args := flagx.FilterArgs(os.Args[1:], []string{"-e", "-n"})
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	email := fs.String("e", "dev@example.com", "profile email")
	name := fs.String("n", "Dev User", "profile name")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	repo := manager.Profiles(db)
	profile, err := repo.GetByEmail(ctx, *email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.Fatalf("profile lookup error: %v", err)
		}
		profile, err = repo.Create(ctx, &models.Profile{Email: *email, Name: *name})
		if err != nil {
			log.Fatalf("profile create error: %v", err)
		}
	}

	authService := services.NewAuthService(db, manager, cfg)
	cookie, err := authService.SessionCookie(profile.ID, 24*time.Hour)
	if err != nil {
		log.Fatalf("cookie mint error: %v", err)
	}

	fmt.Printf("profile id: %s\n", profile.ID)
	fmt.Printf("session cookie: %s=%s\n", common.SessionCookieName, cookie)
}
