package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedUsers(ctx, pool)
	catIDs := seedCategories(ctx, pool)
	prodIDs := seedProducts(ctx, pool, catIDs)
	seedVariants(ctx, pool, prodIDs)
	seedShippingMethods(ctx, pool)
	seedVouchers(ctx, pool, catIDs, prodIDs)

	log.Println("Seeding completed successfully!")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) {
	users := []struct {
		Name  string
		Email string
		Role  string
	}{
		{"Admin User", "admin@storefront.dev", "admin"},
		{"Nova Developer", "nova@storefront.dev", "admin"},
		{"Budi Santoso", "budi@example.com", "customer"},
		{"Siti Aminah", "siti@example.com", "customer"},
		{"Dewi Lestari", "dewi@example.com", "customer"},
		{"Eko Kurniawan", "eko@example.com", "customer"},
	}

	fmt.Println("Seeding Users...")
	hash, err := argon2id.CreateHash("password123", argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (name, email, password_hash, roles)
			VALUES ($1, $2, $3, ARRAY[$4])
			ON CONFLICT (email) DO NOTHING;
		`, u.Name, u.Email, hash, u.Role)
		if err != nil {
			log.Printf("Failed to seed user %s: %v", u.Email, err)
		}
	}
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) map[string]string {
	categories := []struct {
		Name string
		Slug string
	}{
		{"Electronics", "electronics"},
		{"Fashion", "fashion"},
		{"Home & Living", "home-living"},
		{"Beauty", "beauty"},
		{"Sports", "sports"},
		{"Books", "books"},
	}

	fmt.Println("Seeding Categories...")
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, c.Name, c.Slug).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
			continue
		}
		ids[c.Slug] = id
	}
	return ids
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, catIDs map[string]string) map[string]string {
	products := []struct {
		Title    string
		Slug     string
		Price    int64
		Category string
		Ships    bool
	}{
		{"Wireless Earbuds", "wireless-earbuds", 59_900, "electronics", true},
		{"Mechanical Keyboard", "mechanical-keyboard", 129_900, "electronics", true},
		{"Cotton T-Shirt", "cotton-t-shirt", 19_900, "fashion", true},
		{"Running Shoes", "running-shoes", 89_900, "sports", true},
		{"Scented Candle", "scented-candle", 14_900, "home-living", true},
		{"E-Book: Go in Practice", "ebook-go-in-practice", 24_900, "books", false},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]string, len(products))
	for _, p := range products {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (title, slug, price, category_id, requires_shipping)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, price = EXCLUDED.price
			RETURNING id;
		`, p.Title, p.Slug, p.Price, catIDs[p.Category], p.Ships).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert product %s: %v", p.Slug, err)
			continue
		}
		ids[p.Slug] = id
	}
	return ids
}

func seedVariants(ctx context.Context, pool *pgxpool.Pool, prodIDs map[string]string) {
	variants := []struct {
		Product string
		SKU     string
		Price   int64
		Stock   int
	}{
		{"cotton-t-shirt", "TSHIRT-S", 19_900, 40},
		{"cotton-t-shirt", "TSHIRT-M", 19_900, 55},
		{"cotton-t-shirt", "TSHIRT-L", 21_900, 30},
		{"running-shoes", "SHOES-42", 89_900, 12},
		{"running-shoes", "SHOES-43", 89_900, 9},
	}

	fmt.Println("Seeding Variants...")
	for _, v := range variants {
		productID, ok := prodIDs[v.Product]
		if !ok {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO product_variants (product_id, sku, price, stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (sku) DO UPDATE SET price = EXCLUDED.price, stock = EXCLUDED.stock;
		`, productID, v.SKU, v.Price, v.Stock)
		if err != nil {
			log.Printf("Failed to upsert variant %s: %v", v.SKU, err)
		}
	}
}

func seedShippingMethods(ctx context.Context, pool *pgxpool.Pool) {
	methods := []struct {
		Name    string
		Courier string
		Country string
		Price   int64
	}{
		{"Standard", "JNE", "ID", 9_000},
		{"Express", "JNE", "ID", 25_000},
		{"Standard", "DHL", "DE", 4_900},
		{"Standard", "USPS", "US", 5_900},
		{"Priority", "FedEx", "US", 14_900},
	}

	fmt.Println("Seeding Shipping Methods...")
	for _, m := range methods {
		_, err := pool.Exec(ctx, `
			INSERT INTO shipping_methods (name, courier, country_code, price)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM shipping_methods WHERE name = $1 AND courier = $2 AND country_code = $3
			);
		`, m.Name, m.Courier, m.Country, m.Price)
		if err != nil {
			log.Printf("Failed to seed shipping method %s/%s: %v", m.Courier, m.Name, err)
		}
	}
}

func seedVouchers(ctx context.Context, pool *pgxpool.Pool, catIDs, prodIDs map[string]string) {
	now := time.Now()
	from := now.Add(-24 * time.Hour)
	to := now.Add(90 * 24 * time.Hour)

	fmt.Println("Seeding Vouchers...")

	exec := func(code string, args ...any) {
		query := `
			INSERT INTO vouchers (code, name, kind, discount_type, value, percent_bps,
				apply_to_country, product_id, category_id, min_spend, usage_limit, valid_from, valid_to)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (code) DO NOTHING;
		`
		if _, err := pool.Exec(ctx, query, args...); err != nil {
			log.Printf("Failed to seed voucher %s: %v", code, err)
		}
	}

	// One voucher per kind so every calculator path has live data.
	exec("WELCOME10",
		"WELCOME10", "10% off your order", "value", "percent", int64(0), int32(1000),
		nil, nil, nil, int64(50_000), nil, from, to)
	exec("FREESHIPID",
		"FREESHIPID", "Free shipping in Indonesia", "shipping", "percent", int64(0), int32(10000),
		"ID", nil, nil, int64(0), nil, from, to)
	exec("SHOES15",
		"SHOES15", "15% off running shoes", "product", "percent", int64(0), int32(1500),
		nil, prodIDs["running-shoes"], nil, int64(0), int32(500), from, to)
	exec("BOOKWORM",
		"BOOKWORM", "5000 off every book", "category", "fixed", int64(5_000), nil,
		nil, nil, catIDs["books"], int64(0), nil, from, to)
}
