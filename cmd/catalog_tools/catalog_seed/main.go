package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/2beens/liftlog/internal/config"
	"github.com/2beens/liftlog/tools"
)

// seed the standard exercise catalog
func main() {
	fmt.Println("starting catalog tools ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	dsn := fmt.Sprintf(
		"postgres://postgres@%s:%s/%s?sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName,
	)
	if postgresPassword := os.Getenv("LIFTLOG_POSTGRES_PASS"); postgresPassword != "" {
		dsn = fmt.Sprintf(
			"postgres://postgres:%s@%s:%s/%s?sslmode=disable",
			postgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName,
		)
	}

	if err := tools.SeedExerciseCatalog(dsn); err != nil {
		fmt.Printf("catalog seed failed: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("\ncatalog seed completed")
}
