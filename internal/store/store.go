package store

import (
	"errors"

	"github.com/Thetwam/ltibridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(&models.UserToken{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// GetUserToken looks up the token row for a platform user id.
func (s *Store) GetUserToken(userID int64) (*models.UserToken, error) {
	var token models.UserToken
	if err := s.db.Where("user_id = ?", userID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &token, nil
}

// CreateUserToken inserts the first token row for a user.
func (s *Store) CreateUserToken(token *models.UserToken) error {
	return s.db.Create(token).Error
}

// UpdateUserToken rewrites the refresh token and expiry for an existing
// row inside a transaction. Zero rows updated is reported as
// ErrTokenNotUpdated rather than re-reading the row afterwards.
func (s *Store) UpdateUserToken(userID int64, refreshToken string, expiresAt int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserToken{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"refresh_token": refreshToken,
				"expires_at":    expiresAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotUpdated
		}
		return nil
	})
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection (for tests)
func (s *Store) DB() *gorm.DB {
	return s.db
}
