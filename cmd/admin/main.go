// Command admin grants premium or admin rights to an existing account.
//
//	admin -email someone@example.com -admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/contentai/contentai-golang/internal/config"
	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/store"
)

func main() {
	email := flag.String("email", "", "email of the user to update")
	premium := flag.Bool("premium", false, "grant premium")
	admin := flag.Bool("admin", false, "grant admin")
	flag.Parse()

	if err := run(context.Background(), *email, *premium, *admin); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email string, premium, admin bool) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("-email is required")
	}
	if !premium && !admin {
		return errors.New("nothing to do: pass -premium and/or -admin")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	users := store.New(db).Users

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no user with email %s", email)
	}
	if err != nil {
		return err
	}

	var premiumFlag, adminFlag *bool
	if premium {
		premiumFlag = &premium
	}
	if admin {
		adminFlag = &admin
	}
	u, err = users.SetFlags(ctx, u.ID, premiumFlag, adminFlag)
	if err != nil {
		return err
	}

	log.Printf("updated %s: premium=%t admin=%t", u.Email, u.IsPremium, u.IsAdmin)
	return nil
}
