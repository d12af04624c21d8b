package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("gophauth-admin", flag.ExitOnError)
	dsn := fs.String("d", os.Getenv(config.EnvDatabaseDSN), "database DSN")
	algorithm := fs.String("h", password.AlgorithmBcrypt, "password hashing algorithm for create-user")
	_ = fs.Parse(os.Args[1:])

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "database DSN is required (-d or "+config.EnvDatabaseDSN+")")
		return 2
	}

	hasher, err := password.New(*algorithm, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx := context.Background()

	db, err := repomanager.OpenPostgres(ctx, *dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer db.Close()

	app := admin.NewApp(db, repomanager.NewPostgresRepositoryManager(), hasher, os.Stdout)
	if err := app.Run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, admin.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
