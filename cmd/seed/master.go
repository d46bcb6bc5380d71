package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/urfave/cli/v2"
)

var fake = faker.New()

var productCategories = []string{
	"beverages", "snacks", "dairy", "produce", "frozen",
	"household", "personal_care", "bakery",
}

// Jakarta metro area, roughly 30km around the city center.
const (
	cityLat    = -6.2088
	cityLon    = 106.8456
	cityRadius = 0.27
)

func runMaster(c *cli.Context) error {
	db := dbFrom(c)

	products := c.Int("products")
	suppliers := c.Int("suppliers")
	locations := c.Int("locations")

	if err := seedProducts(db, products); err != nil {
		return err
	}
	if err := seedSuppliers(db, suppliers); err != nil {
		return err
	}
	if err := seedLocations(db, locations); err != nil {
		return err
	}

	log.Printf("master data seeded: %d products, %d suppliers, %d locations",
		products, suppliers, locations)
	return nil
}

func seedProducts(db *sql.DB, n int) error {
	const query = `
		INSERT INTO products (
			name, sku, category, base_cost, current_price, min_price, max_price,
			current_stock, reorder_level, max_stock_level, weight_kg,
			forecasting_enabled, pricing_enabled, seasonal_factors, demand_volatility
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for i := 0; i < n; i++ {
		baseCost := fake.Float64(2, 5, 80)
		price := baseCost * fake.Float64(2, 120, 180) / 100
		reorder := fake.IntBetween(20, 100)

		factors, err := json.Marshal(seasonalFactors())
		if err != nil {
			return fmt.Errorf("failed to encode seasonal factors: %w", err)
		}

		_, err = db.Exec(query,
			productName(),
			"SKU-"+strings.ToUpper(cuid.Slug()),
			productCategories[fake.IntBetween(0, len(productCategories)-1)],
			baseCost,
			price,
			price*0.7,
			price*1.5,
			fake.IntBetween(reorder, reorder*6),
			reorder,
			reorder*10,
			fake.Float64(2, 1, 2500)/100,
			true,
			fake.IntBetween(0, 9) < 8, // pricing disabled for ~20%
			factors,
			fake.Float64(2, 5, 60)/100,
		)
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
	}
	return nil
}

func seedSuppliers(db *sql.DB, n int) error {
	const query = `
		INSERT INTO suppliers (
			name, code, city, country, avg_delivery_days, on_time_rate,
			quality_score, financial_stability, geographic_risk, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)`

	for i := 0; i < n; i++ {
		_, err := db.Exec(query,
			fake.Company().Name(),
			"SUP-"+strings.ToUpper(cuid.Slug()),
			fake.Address().City(),
			fake.Address().Country(),
			fake.IntBetween(1, 14),
			fake.Float64(1, 650, 995)/10,
			fake.Float64(1, 50, 100)/10,
			fake.Float64(2, 40, 100)/100,
			fake.Float64(2, 0, 80)/100,
		)
		if err != nil {
			return fmt.Errorf("failed to insert supplier: %w", err)
		}
	}
	return nil
}

func seedLocations(db *sql.DB, n int) error {
	const query = `
		INSERT INTO delivery_locations (
			name, address, latitude, longitude, window_start, window_end,
			max_weight_kg, avg_service_minutes, access_difficulty, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)`

	for i := 0; i < n; i++ {
		name := fake.Company().Name() + " Store"
		if i == 0 {
			name = "Central Warehouse"
		}

		_, err := db.Exec(query,
			name,
			fake.Address().StreetAddress(),
			cityLat+fake.Float64(4, -10000, 10000)/10000*cityRadius,
			cityLon+fake.Float64(4, -10000, 10000)/10000*cityRadius,
			fmt.Sprintf("%02d:00", fake.IntBetween(6, 9)),
			fmt.Sprintf("%02d:00", fake.IntBetween(16, 21)),
			fake.IntBetween(500, 5000),
			fake.IntBetween(10, 45),
			fake.IntBetween(1, 5),
		)
		if err != nil {
			return fmt.Errorf("failed to insert delivery location: %w", err)
		}
	}
	return nil
}

func productName() string {
	return fake.Lorem().Word() + " " + fake.Lorem().Word()
}

// seasonalFactors produces a mild sinusoidal month profile with a stronger
// December peak, the shape retail demand typically follows.
func seasonalFactors() map[int]float64 {
	factors := make(map[int]float64, 12)
	for month := 1; month <= 12; month++ {
		f := 1.0 + fake.Float64(2, -15, 15)/100
		if month == 12 {
			f += fake.Float64(2, 10, 40) / 100
		}
		factors[month] = f
	}
	return factors
}
