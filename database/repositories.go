package database

import (
	"context"
	"errors"
	"strings"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"gorm.io/gorm"
)

// translateDuplicate maps unique-constraint violations to the sentinel the
// provisioning engine retries on.
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		return services.ErrDuplicateRecord
	}
	return err
}

// ApplicationStore is the GORM-backed ApplicationRepository.
type ApplicationStore struct {
	db *gorm.DB
}

// NewApplicationStore creates an application store
func NewApplicationStore(db *gorm.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) FindByID(ctx context.Context, id uint) (*model.AdmissionApplication, error) {
	var app model.AdmissionApplication
	err := s.db.WithContext(ctx).Preload("Documents").First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *ApplicationStore) Save(ctx context.Context, app *model.AdmissionApplication) error {
	return s.db.WithContext(ctx).Save(app).Error
}

// StudentStore is the GORM-backed StudentRepository.
type StudentStore struct {
	db *gorm.DB
}

// NewStudentStore creates a student store
func NewStudentStore(db *gorm.DB) *StudentStore {
	return &StudentStore{db: db}
}

func (s *StudentStore) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentStore) Create(ctx context.Context, student *model.Student) error {
	return translateDuplicate(s.db.WithContext(ctx).Create(student).Error)
}

func (s *StudentStore) Count(ctx context.Context) (int64, error) {
	var count int64
	// Unscoped: student numbers are never reissued, so soft-deleted rows
	// still occupy their slot in the sequence.
	err := s.db.WithContext(ctx).Model(&model.Student{}).Unscoped().Count(&count).Error
	return count, err
}

// AccountStore is the GORM-backed AccountRepository. It owns password
// hashing so plaintext never reaches a column.
type AccountStore struct {
	db *gorm.DB
}

// NewAccountStore creates an account store
func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountStore) Create(ctx context.Context, account *model.Account, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	return translateDuplicate(s.db.WithContext(ctx).Create(account).Error)
}

func (s *AccountStore) Save(ctx context.Context, account *model.Account) error {
	return s.db.WithContext(ctx).Save(account).Error
}

func (s *AccountStore) SetPassword(ctx context.Context, account *model.Account, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	return s.db.WithContext(ctx).Model(account).Update("password_hash", hash).Error
}
