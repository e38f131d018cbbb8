package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mediadeck/crm/backend/internal/cache"
	"github.com/mediadeck/crm/backend/internal/config"
	"github.com/mediadeck/crm/backend/internal/database"
	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/repository"
	"github.com/mediadeck/crm/backend/internal/services"
	"github.com/mediadeck/crm/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type companySeed struct {
	company  models.Company
	contacts []models.Contact
}

func main() {
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to databases")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repos := repository.NewRepositoryManager(dbManager.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created := 0
	for _, seed := range fixtures() {
		company := seed.company
		if err := repos.Companies.Create(ctx, &company); err != nil {
			logger.WithError(err).WithField("company", company.Name).Error("Failed to create company")
			continue
		}
		for _, contact := range seed.contacts {
			contact.CompanyID = company.ID
			if err := repos.Contacts.Create(ctx, &contact); err != nil {
				logger.WithError(err).WithField("contact", contact.Email).Error("Failed to create contact")
				continue
			}
			created++
		}
		logger.WithFields(logrus.Fields{
			"company":  company.Name,
			"contacts": len(seed.contacts),
		}).Info("Seeded company")
	}

	// Seeded rows make any cached search stale; expire them now rather
	// than waiting out the TTL.
	searchCache := cache.New(cache.NewRedisStore(dbManager.Redis), logger)
	for _, tag := range []string{services.TagContacts, services.TagCompanies, services.TagAggregates} {
		if err := searchCache.InvalidateByTag(ctx, tag); err != nil {
			logger.WithError(err).WithField("tag", tag).Warn("Failed to invalidate cache tag")
		}
	}

	logger.WithField("contacts", created).Info("Seeding complete")
}

func fixtures() []companySeed {
	return []companySeed{
		{
			company: models.Company{
				Name:          "Horizon Media Group",
				Description:   "Independent full-service media agency",
				Website:       "https://horizonmedia.example.com",
				CompanyType:   models.CompanyTypeIndependentAgency,
				AgencyType:    "full_service",
				Industry:      "advertising",
				City:          "New York",
				State:         "NY",
				Region:        "Northeast",
				EmployeeCount: models.EmployeeRangeEnterprise,
				RevenueRange:  models.RevenueRange100M,
				FoundedYear:   1989,
				Verified:      true,
			},
			contacts: []models.Contact{
				{
					FirstName:       "Maria",
					LastName:        "Delgado",
					Title:           "Chief Executive Officer",
					Email:           "maria.delgado@horizonmedia.example.com",
					Department:      models.DepartmentLeadership,
					Seniority:       models.SeniorityCLevel,
					IsDecisionMaker: true,
					Verified:        true,
					IsActive:        true,
				},
				{
					FirstName:       "James",
					LastName:        "Okafor",
					Title:           "Media Director",
					Email:           "james.okafor@horizonmedia.example.com",
					Department:      models.DepartmentMediaPlanning,
					Seniority:       models.SeniorityDirector,
					IsDecisionMaker: true,
					Verified:        true,
					IsActive:        true,
				},
				{
					FirstName:  "Priya",
					LastName:   "Sharma",
					Title:      "Programmatic Trading Manager",
					Email:      "priya.sharma@horizonmedia.example.com",
					Department: models.DepartmentProgrammatic,
					Seniority:  models.SeniorityManager,
					Verified:   false,
					IsActive:   true,
				},
			},
		},
		{
			company: models.Company{
				Name:          "Beacon Brands Inc",
				Description:   "Consumer packaged goods portfolio company",
				Website:       "https://beaconbrands.example.com",
				CompanyType:   models.CompanyTypeNationalAdvertiser,
				Industry:      "consumer_goods",
				City:          "Chicago",
				State:         "IL",
				Region:        "Midwest",
				EmployeeCount: models.EmployeeRangeMega,
				RevenueRange:  models.RevenueRange100M,
				FoundedYear:   1964,
				Verified:      true,
			},
			contacts: []models.Contact{
				{
					FirstName:       "Alan",
					LastName:        "Reyes",
					Title:           "Chief Marketing Officer",
					Email:           "alan.reyes@beaconbrands.example.com",
					Department:      models.DepartmentMarketing,
					Seniority:       models.SeniorityCLevel,
					IsDecisionMaker: true,
					Verified:        true,
					IsActive:        true,
				},
				{
					FirstName:  "Sofia",
					LastName:   "Lindqvist",
					Title:      "VP Brand Marketing",
					Email:      "sofia.lindqvist@beaconbrands.example.com",
					Department: models.DepartmentMarketing,
					Seniority:  models.SeniorityVP,
					Verified:   true,
					IsActive:   true,
				},
			},
		},
		{
			company: models.Company{
				Name:          "Signalcraft Digital",
				Description:   "Programmatic-first digital agency",
				Website:       "https://signalcraft.example.com",
				CompanyType:   models.CompanyTypeIndependentAgency,
				AgencyType:    "digital",
				Industry:      "advertising",
				City:          "Austin",
				State:         "TX",
				Region:        "South",
				EmployeeCount: models.EmployeeRangeMedium,
				RevenueRange:  models.RevenueRange5M25M,
				FoundedYear:   2015,
				Verified:      false,
			},
			contacts: []models.Contact{
				{
					FirstName:       "Dana",
					LastName:        "Whitfield",
					Title:           "Head of Programmatic",
					Email:           "dana.whitfield@signalcraft.example.com",
					Department:      models.DepartmentProgrammatic,
					Seniority:       models.SeniorityDirector,
					IsDecisionMaker: true,
					Verified:        false,
					IsActive:        true,
				},
				{
					FirstName:  "Tom",
					LastName:   "Nguyen",
					Title:      "Media Buyer",
					Email:      "tom.nguyen@signalcraft.example.com",
					Department: models.DepartmentMediaBuying,
					Seniority:  models.SeniorityAssociate,
					Verified:   false,
					IsActive:   true,
				},
			},
		},
	}
}
