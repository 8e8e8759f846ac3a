package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/adapters/database"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	providerRepo := database.NewProviderAdapter(pgClient)
	leadRepo := database.NewLeadAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				assignments,
				leads,
				providers
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()

	// 1. Seed Providers (clinicians across SP, RJ and MG)
	providers := []entities.Provider{
		{
			ID: uuid.New().String(), Name: "Dr. Ana Souza", ClinicName: "Clínica Paulista",
			CRM: "CRM-SP-123456", City: "São Paulo", State: "SP", PostalCode: "01310-100",
			MonthlyCapacity: 20, Status: entities.ProviderStatusActive,
			EnrolledAt: now.AddDate(-2, 0, 0), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Dr. Bruno Lima", ClinicName: "Instituto Bela Vista",
			CRM: "CRM-SP-234567", City: "São Paulo", State: "SP", PostalCode: "01310-940",
			MonthlyCapacity: 12, Status: entities.ProviderStatusActive,
			EnrolledAt: now.AddDate(-1, -3, 0), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Dra. Carla Mendes", ClinicName: "Clínica Campinas Saúde",
			CRM: "CRM-SP-345678", City: "Campinas", State: "SP", PostalCode: "13010-001",
			MonthlyCapacity: 15, Status: entities.ProviderStatusActive,
			EnrolledAt: now.AddDate(-1, 0, 0), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Dr. Diego Ferreira", ClinicName: "Centro Médico Carioca",
			CRM: "CRM-RJ-456789", City: "Rio de Janeiro", State: "RJ", PostalCode: "20040-020",
			MonthlyCapacity: 18, Status: entities.ProviderStatusActive,
			EnrolledAt: now.AddDate(0, -8, 0), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Dra. Elisa Rocha", ClinicName: "Clínica Savassi",
			CRM: "CRM-MG-567890", City: "Belo Horizonte", State: "MG", PostalCode: "30130-010",
			MonthlyCapacity: 10, Status: entities.ProviderStatusActive,
			EnrolledAt: now.AddDate(0, -6, 0), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Dr. Fábio Nunes", ClinicName: "Clínica Ipanema",
			CRM: "CRM-RJ-678901", City: "Rio de Janeiro", State: "RJ", PostalCode: "22410-003",
			MonthlyCapacity: 8, Status: entities.ProviderStatusSuspended,
			EnrolledAt: now.AddDate(0, -4, 0), CreatedAt: now, UpdatedAt: now,
		},
	}

	for _, p := range providers {
		if err := providerRepo.Create(ctx, &p); err != nil {
			log.Printf("Failed to create provider %s: %v", p.Name, err)
		}
	}

	// 2. Seed Leads (unassigned intake records with mixed location quality)
	leads := []entities.Lead{
		{ID: uuid.New().String(), RawLocation: "01310-100", Consent: true, Status: entities.LeadStatusNew, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RawLocation: "20040-020", Consent: true, Status: entities.LeadStatusNew, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RawLocation: "Campinas, SP", Consent: true, Status: entities.LeadStatusNew, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RawLocation: "Belo Horizonte, MG", Consent: true, Status: entities.LeadStatusNew, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RawLocation: "99999-999", Consent: true, Status: entities.LeadStatusNew, CreatedAt: now, UpdatedAt: now},
	}

	for _, l := range leads {
		if err := leadRepo.Create(ctx, &l); err != nil {
			log.Printf("Failed to create lead %s: %v", l.ID, err)
		}
	}

	log.Printf("Seeded %d providers and %d leads", len(providers), len(leads))
}
