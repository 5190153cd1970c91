package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/qoo-shop/shopclient/internal/models"
)

const (
	keyToken   = "token"
	keyAccount = "account"
)

type localValue struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (localValue) TableName() string { return "local_values" }

// cartSnapshot is the whole serialized cart for one account. Saves overwrite
// wholesale, there is no merge and no expiry.
type cartSnapshot struct {
	Account   string `gorm:"primaryKey"`
	Items     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (cartSnapshot) TableName() string { return "cart_snapshots" }

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.AutoMigrate(&localValue{}, &cartSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) SaveCart(account string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	snap := cartSnapshot{Account: account, Items: string(raw), UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadCart returns the stored snapshot for the account; the second return is
// false when no snapshot was ever saved.
func (s *Store) LoadCart(account string) ([]models.CartLine, bool, error) {
	var snap cartSnapshot
	if err := s.db.First(&snap, "account = ?", account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(snap.Items), &lines); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return lines, true, nil
}

func (s *Store) SaveCredential(token, account string) error {
	values := []localValue{
		{Key: keyToken, Value: token},
		{Key: keyAccount, Value: account},
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&values).Error
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Store) LoadCredential() (token, account string, err error) {
	var values []localValue
	if err := s.db.Where("key IN ?", []string{keyToken, keyAccount}).Find(&values).Error; err != nil {
		return "", "", fmt.Errorf("load credential: %w", err)
	}
	for _, v := range values {
		switch v.Key {
		case keyToken:
			token = v.Value
		case keyAccount:
			account = v.Value
		}
	}
	return token, account, nil
}

func (s *Store) ClearCredential() error {
	err := s.db.Where("key IN ?", []string{keyToken, keyAccount}).Delete(&localValue{}).Error
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
