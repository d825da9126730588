package storage

import (
	"log"
	"os"

	"github.com/Shielded-Bit/QABA-sub000/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development
	if os.Getenv("QABA_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

// Open connects through an explicit dialector and runs migrations. Tests use
// this with the sqlite driver.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	DB = db
	return db, performMigrations(db)
}

func performMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ClientProfile{},
		&models.AgentProfile{},
		&models.LandlordProfile{},
		&models.AdminProfile{},
		&models.Property{},
		&models.PropertyImage{},
		&models.PropertyVideo{},
		&models.PropertyDocument{},
		&models.PropertyReview{},
		&models.Favorite{},
		&models.Transaction{},
		&models.Notification{},
		&models.PropertySurveyMeeting{},
		&models.Job{},
		&models.JobApplication{},
		&models.BlogPost{},
		&models.AuditLog{},
	)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	if err := performMigrations(db); err != nil {
		log.Panic("migration failed: " + err.Error())
	}
	return db
}
