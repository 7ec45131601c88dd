package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"rental-admin/rental"
)

// seed_demo fills a fresh backend with a small demo inventory so the console
// has something to show. It logs in with SEED_EMAIL/SEED_PASSWORD and creates
// categories first, then equipment referencing them.

type equipmentSeed struct {
	name        string
	description string
	price       float64
	stock       int
	category    string
}

func main() {
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Set SEED_EMAIL and SEED_PASSWORD to an account that may create records.")
		os.Exit(1)
	}

	cfg, err := rental.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	dataDir, err := os.MkdirTemp("", "rental-seed-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating scratch directory: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dataDir)

	store, err := rental.OpenSessionStore(dataDir, cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("Logging in to %s as %s... ", cfg.BaseURL, email)
	sess, err := store.Login(ctx, email, password)
	if err != nil {
		fmt.Printf("ERROR - %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("SUCCESS (role %s)\n", sess.Role)

	api := rental.NewClient(cfg.BaseURL, store, cfg.HTTPTimeout)

	categorySeeds := []rental.CategoryDraft{
		{Name: "Herramientas electricas", Description: "Taladros, sierras y lijadoras"},
		{Name: "Maquinaria pesada", Description: "Compactadoras y mezcladoras"},
		{Name: "Andamios", Description: "Torres y plataformas de trabajo"},
		{Name: "Jardineria", Description: "Cortacesped y desbrozadoras"},
	}

	successCount := 0
	errorCount := 0
	categoryIDs := map[string]int64{}

	fmt.Println("\nCreating categories...")
	for _, seed := range categorySeeds {
		fmt.Printf("Creating category %q... ", seed.Name)
		cat, err := api.Categories().Create(ctx, seed)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", cat.ID)
		categoryIDs[cat.Name] = cat.ID
		successCount++
	}

	equipmentSeeds := []equipmentSeed{
		{"Taladro percutor 850W", "Incluye maletin y juego de brocas", 12.50, 8, "Herramientas electricas"},
		{"Sierra circular 1400W", "Disco de 190mm", 15.00, 5, "Herramientas electricas"},
		{"Lijadora orbital", "Para acabados finos", 8.75, 6, "Herramientas electricas"},
		{"Compactadora de placa", "Motor de gasolina, 90kg", 45.00, 2, "Maquinaria pesada"},
		{"Mezcladora de cemento 160L", "Volteo manual", 35.00, 3, "Maquinaria pesada"},
		{"Torre de andamio 6m", "Con ruedas y estabilizadores", 28.00, 4, "Andamios"},
		{"Plataforma de trabajo 1.5m", "Plegable, carga 150kg", 9.50, 10, "Andamios"},
		{"Cortacesped autopropulsado", "Ancho de corte 46cm", 22.00, 3, "Jardineria"},
		{"Desbrozadora 43cc", "Arnes incluido", 18.00, 4, "Jardineria"},
	}

	fmt.Println("\nCreating equipment...")
	for _, seed := range equipmentSeeds {
		fmt.Printf("Creating %q... ", seed.name)
		draft := rental.EquipmentDraft{
			Name:        seed.name,
			Description: seed.description,
			Price:       seed.price,
			Stock:       seed.stock,
		}
		if id, ok := categoryIDs[seed.category]; ok {
			draft.CategoryID = &id
		}
		eq, err := api.Equipment().Create(ctx, draft)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", eq.ID)
		successCount++
	}

	fmt.Printf("\nSeeding complete!\n")
	fmt.Printf("Created: %d records\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCurrent inventory:")
		items, err := api.Equipment().List(ctx)
		if err != nil {
			fmt.Printf("Error retrieving equipment: %v\n", err)
			return
		}
		fmt.Printf("%-4s %-35s %-22s %8s %6s\n", "ID", "Nombre", "Categoria", "Precio", "Stock")
		fmt.Println(strings.Repeat("-", 80))
		for _, it := range items {
			fmt.Printf("%-4d %-35s %-22s %8.2f %6d\n",
				it.ID, truncateString(it.Name, 35), truncateString(it.CategoryLabel(), 22), it.Price, it.Stock)
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
