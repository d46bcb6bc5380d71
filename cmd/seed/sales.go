package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

type seedProduct struct {
	id         int64
	price      float64
	volatility float64
	factors    map[int]float64
}

// runSales generates one synthetic sales row per product per day. Demand
// follows a weekly cycle scaled by the product's seasonal profile, with
// gaussian noise sized by its volatility and occasional promotion spikes.
func runSales(c *cli.Context) error {
	db := dbFrom(c)
	days := c.Int("days")
	rng := rand.New(rand.NewSource(c.Int64("rng-seed")))

	products, err := loadSeedProducts(db)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("no products found, run the master seeder first")
	}

	const query = `
		INSERT INTO sales_records (
			product_id, sold_on, quantity, price, promotion,
			competitor_price, economic_index, weather_factor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, sold_on) DO NOTHING`

	stmt, err := db.PrepareContext(c.Context, query)
	if err != nil {
		return fmt.Errorf("failed to prepare sales insert: %w", err)
	}
	defer stmt.Close()

	bar := progressbar.Default(int64(len(products)*days), "seeding sales")
	start := time.Now().AddDate(0, 0, -days)
	inserted := 0

	for _, p := range products {
		baseDemand := float64(rng.Intn(40) + 10)

		for d := 0; d < days; d++ {
			day := start.AddDate(0, 0, d)

			demand := baseDemand * seasonalFactorFor(p.factors, day.Month())
			// Weekend lift
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				demand *= 1.25
			}
			demand *= 1 + rng.NormFloat64()*p.volatility

			promotion := rng.Float64() < 0.05
			price := p.price
			if promotion {
				price *= 0.9
				demand *= 1.4
			}

			quantity := int(math.Max(0, math.Round(demand)))

			res, err := stmt.ExecContext(c.Context,
				p.id,
				day.Format("2006-01-02"),
				quantity,
				price,
				promotion,
				p.price*(0.9+rng.Float64()*0.2),
				0.95+rng.Float64()*0.1,
				0.8+rng.Float64()*0.4,
			)
			if err != nil {
				return fmt.Errorf("failed to insert sales record: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
			bar.Add(1)
		}
	}

	log.Printf("sales history seeded: %d rows inserted for %d products", inserted, len(products))
	return nil
}

func loadSeedProducts(db *sql.DB) ([]seedProduct, error) {
	rows, err := db.Query(
		`SELECT id, current_price, demand_volatility, seasonal_factors FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	var products []seedProduct
	for rows.Next() {
		var p seedProduct
		var factors []byte
		if err := rows.Scan(&p.id, &p.price, &p.volatility, &factors); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.factors = decodeFactors(factors)
		products = append(products, p)
	}
	return products, rows.Err()
}

func decodeFactors(raw []byte) map[int]float64 {
	factors := make(map[int]float64)
	if len(raw) == 0 {
		return factors
	}
	if err := json.Unmarshal(raw, &factors); err != nil {
		return map[int]float64{}
	}
	return factors
}

func seasonalFactorFor(factors map[int]float64, month time.Month) float64 {
	if f, ok := factors[int(month)]; ok {
		return f
	}
	return 1.0
}
