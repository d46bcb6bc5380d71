package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

// dbKey carries the *sql.DB opened by initDB through the cli context.
const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *sql.DB {
	db, _ := c.Context.Value(dbKey).(*sql.DB)
	return db
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and seed the database with demo data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Create tables and indexes",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:  "master",
				Usage: "Seed master data (products, suppliers, delivery locations)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "products",
						Usage: "Number of products to generate",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "suppliers",
						Usage: "Number of suppliers to generate",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "locations",
						Usage: "Number of delivery locations to generate",
						Value: 15,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMaster,
			},
			{
				Name:  "sales",
				Usage: "Seed synthetic daily sales history for every product",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "days",
						Usage: "Days of history to generate per product",
						Value: 365,
					},
					&cli.Int64Flag{
						Name:    "rng-seed",
						Usage:   "Random seed for reproducible history",
						Value:   42,
						EnvVars: []string{"SEED_RNG_SEED"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
