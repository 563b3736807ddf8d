package database

import (
	"fmt"
	"log"
	"os"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminAccount(); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	if err := s.SeedAppSettings(); err != nil {
		return fmt.Errorf("failed to seed app settings: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminAccount creates the default admin account
func (s *Seeder) SeedAdminAccount() error {
	var count int64
	if err := s.db.Model(&model.Account{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin account already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin account creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Account{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		IsApproved:   true,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin account: %s\n", admin.Email)
	return nil
}

// SeedSubjects creates the first-semester subject catalogue
func (s *Seeder) SeedSubjects() error {
	var count int64
	if err := s.db.Model(&model.Subject{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Subjects already exist, skipping...")
		return nil
	}

	subjects := []model.Subject{
		{Code: "CS101", Name: "Programming Fundamentals", Department: "Computer Science", Semester: 1, Credits: 4},
		{Code: "CS102", Name: "Discrete Mathematics", Department: "Computer Science", Semester: 1, Credits: 4},
		{Code: "CS103", Name: "Computer Organization", Department: "Computer Science", Semester: 1, Credits: 3},
		{Code: "CS201", Name: "Data Structures", Department: "Computer Science", Semester: 2, Credits: 4},
		{Code: "CS202", Name: "Database Management Systems", Department: "Computer Science", Semester: 2, Credits: 4},
		{Code: "EE101", Name: "Circuit Theory", Department: "Electrical Engineering", Semester: 1, Credits: 4},
		{Code: "EE102", Name: "Engineering Mathematics", Department: "Electrical Engineering", Semester: 1, Credits: 4},
		{Code: "ME101", Name: "Engineering Mechanics", Department: "Mechanical Engineering", Semester: 1, Credits: 4},
		{Code: "BA101", Name: "Principles of Management", Department: "Business Administration", Semester: 1, Credits: 3},
		{Code: "BA102", Name: "Financial Accounting", Department: "Business Administration", Semester: 1, Credits: 4},
	}

	if err := s.db.Create(&subjects).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d subjects\n", len(subjects))
	return nil
}

// SeedAppSettings creates default application settings
func (s *Seeder) SeedAppSettings() error {
	var count int64
	if err := s.db.Model(&model.AppSetting{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  App settings already exist, skipping...")
		return nil
	}

	settings := []model.AppSetting{
		{
			Key:         model.SettingInstitutionName,
			Value:       "University Management System",
			Type:        "string",
			Description: "Institution display name used in emails and headers",
			IsPublic:    true,
		},
		{
			Key:         model.SettingAdmissionsOpen,
			Value:       "true",
			Type:        "bool",
			Description: "Whether the public admission application form accepts submissions",
			IsPublic:    true,
		},
		{
			Key:         model.SettingCurrentSemester,
			Value:       "1",
			Type:        "int",
			Description: "Current academic semester",
			IsPublic:    true,
		},
		{
			Key:         "fees.overdue_grace_days",
			Value:       "7",
			Type:        "int",
			Description: "Days past the due date before a pending invoice is marked overdue",
			IsPublic:    false,
		},
		{
			Key:         "security.max_login_attempts",
			Value:       "5",
			Type:        "int",
			Description: "Maximum failed login attempts before lockout",
			IsPublic:    false,
		},
	}

	if err := s.db.Create(&settings).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d app settings\n", len(settings))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
