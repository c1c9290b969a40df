package database

import (
	"fmt"

	"contests/config"
	"contests/models"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

var AdminID uint = 1
var AdminName = "Admin"
var AdminEmail = "admin@admin.com"

// InitDB initializes the database connection from the configuration, migrates the models and
// populates the database with default values if needed
func InitDB() {
	var err error
	DB, err = Open(Dialector())
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	if err := Populate(DB); err != nil {
		log.Fatal("failed to populate database: ", err)
	}
}

// Dialector picks the gorm driver configured by DATABASE_TYPE
func Dialector() gorm.Dialector {
	if config.DatabaseType == "sqlite" {
		return sqlite.Open(SQLiteDSN(config.SQLitePath))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=UTC", config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)
	return postgres.Open(dsn)
}

// SQLiteDSN enables foreign keys and waits on locks instead of failing with SQLITE_BUSY
func SQLiteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open opens a gorm connection on the given dialector
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables. The unique index on signed_up(user_id, competition_id)
// is what keeps concurrent signups from producing duplicates.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Competition{},
		&models.Signup{},
		&models.Message{},
	)
}

// Populate creates the default administrator when the users table is empty
func Populate(db *gorm.DB) error {
	var countUser int64
	if err := db.Model(&models.User{}).Count(&countUser).Error; err != nil {
		return err
	}
	if countUser > 0 {
		return nil
	}

	admin := models.User{
		Name:  AdminName,
		Email: AdminEmail,
		Role:  models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	AdminID = admin.ID
	log.Println("Default user admin created")
	return nil
}
