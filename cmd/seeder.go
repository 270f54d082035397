package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/catalog"
	userDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/user"
	"github.com/sciadvances/catalog-api/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the admin account and sample catalog data",
	Long:  `Seed the database with the bootstrap writer account from config plus a small sample catalog for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"organization_person", "organization_product", "person_product",
				"organizations", "persons", "products", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedAdmin(db, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password, cfg.Security.BCryptCost)
		seedCatalog(db)
	},
}

func seedAdmin(db *gorm.DB, username, email, password string, bcryptCost int) {
	if username == "" || email == "" || password == "" {
		log.Fatal("admin username, email and password must be configured before seeding")
	}

	var count int64
	if err := db.Model(&userDatamodel.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Fatalf("failed to check admin account: %v", err)
	}
	if count > 0 {
		fmt.Println("Admin account already exists:", username)
		return
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin := &userDatamodel.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Name:         username,
		RegisterTime: time.Now().UTC(),
		Active:       true,
		Role:         user.RoleWriter,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}
	fmt.Println("Seeded admin account:", username)
}

func seedCatalog(db *gorm.DB) {
	var count int64
	if err := db.Model(&catalogDatamodel.Organization{}).Count(&count).Error; err != nil {
		log.Fatalf("failed to check catalog: %v", err)
	}
	if count > 0 {
		fmt.Println("Catalog already has data; skipping sample seed")
		return
	}

	date := func(value string) *time.Time {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			log.Fatalf("bad seed date %q: %v", value, err)
		}
		return &t
	}
	str := func(value string) *string { return &value }

	curie := &catalogDatamodel.Person{
		Name:      "Marie Curie",
		BirthDate: date("1867-11-07"),
		DeathDate: date("1934-07-04"),
		WikiURL:   str("https://en.wikipedia.org/wiki/Marie_Curie"),
	}
	einstein := &catalogDatamodel.Person{
		Name:      "Albert Einstein",
		BirthDate: date("1879-03-14"),
		DeathDate: date("1955-04-18"),
		WikiURL:   str("https://en.wikipedia.org/wiki/Albert_Einstein"),
	}
	radium := &catalogDatamodel.Product{
		Name:    "Radium",
		WikiURL: str("https://en.wikipedia.org/wiki/Radium"),
	}
	relativity := &catalogDatamodel.Product{
		Name:    "General relativity",
		WikiURL: str("https://en.wikipedia.org/wiki/General_relativity"),
	}
	sorbonne := &catalogDatamodel.Organization{
		Name:      "University of Paris",
		BirthDate: date("1150-01-01"),
		WikiURL:   str("https://en.wikipedia.org/wiki/University_of_Paris"),
		Persons:   []*catalogDatamodel.Person{curie},
		Products:  []*catalogDatamodel.Product{radium},
	}
	princeton := &catalogDatamodel.Organization{
		Name:     "Institute for Advanced Study",
		WikiURL:  str("https://en.wikipedia.org/wiki/Institute_for_Advanced_Study"),
		Persons:  []*catalogDatamodel.Person{einstein},
		Products: []*catalogDatamodel.Product{relativity},
	}

	curie.Products = []*catalogDatamodel.Product{radium}
	einstein.Products = []*catalogDatamodel.Product{relativity}

	for _, org := range []*catalogDatamodel.Organization{sorbonne, princeton} {
		if err := db.Create(org).Error; err != nil {
			log.Fatalf("failed to seed organization %s: %v", org.Name, err)
		}
		fmt.Println("Seeded organization:", org.Name)
	}
}
