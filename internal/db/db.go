package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	SeedServices(db)
	SeedBarber(db, cfg)

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Appointment{},
		&models.AuditLog{},
	)
}

// SeedServices fills the catalogue on first boot so booking works out of
// the box. Existing rows are left alone.
func SeedServices(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	price := func(v float64) *float64 { return &v }
	minutes := func(v int) *int { return &v }

	services := []models.Service{
		{Name: "Haircut", Price: price(35), DurationMinutes: minutes(30)},
		{Name: "Beard trim", Price: price(25), DurationMinutes: minutes(30)},
		{Name: "Haircut + beard", Price: price(55), DurationMinutes: minutes(60)},
		{Name: "Kids haircut", Price: price(30), DurationMinutes: minutes(30)},
		{Name: "Hot towel shave", Price: price(40), DurationMinutes: minutes(45)},
	}

	if err := db.Create(&services).Error; err != nil {
		log.Warn().Err(err).Msg("failed to seed services")
	}
}

// SeedBarber provisions the bootstrap barber account from the
// environment. Registration only creates clients, so a fresh database
// has no account that can reach the barber endpoints without this.
func SeedBarber(db *gorm.DB, cfg *config.Config) {
	if cfg.BarberEmail == "" || cfg.BarberPassword == "" {
		return
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ?", cfg.BarberEmail).
		Count(&count).Error; err != nil || count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.BarberPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Warn().Err(err).Msg("failed to hash barber password")
		return
	}

	barber := models.User{
		Name:         "Barber",
		Email:        cfg.BarberEmail,
		PasswordHash: string(hashed),
		Role:         models.RoleBarber,
	}
	if err := db.Create(&barber).Error; err != nil {
		log.Warn().Err(err).Msg("failed to seed barber")
	}
}
