package kvstore

import (
	"errors"

	"council-governance/internal/models"

	"gorm.io/gorm"
)

// DB is a Store backed by GORM. Batches commit inside a single
// database transaction.
type DB struct {
	db *gorm.DB
}

// NewDB wraps an open GORM connection. Migrations are the caller's
// responsibility (see internal/db).
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (s *DB) Get(key []byte) ([]byte, bool, error) {
	var rec models.KVRecord
	err := s.db.Where("key = ?", string(key)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (s *DB) Put(key, value []byte) error {
	return putTx(s.db, key, value)
}

func (s *DB) Delete(key []byte) error {
	return s.db.Where("key = ?", string(key)).Delete(&models.KVRecord{}).Error
}

func (s *DB) Apply(writes []Write) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			if w.Delete {
				if err := tx.Where("key = ?", string(w.Key)).Delete(&models.KVRecord{}).Error; err != nil {
					return err
				}
				continue
			}
			if err := putTx(tx, w.Key, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func putTx(tx *gorm.DB, key, value []byte) error {
	rec := models.KVRecord{Key: string(key), Value: value}
	return tx.Where(models.KVRecord{Key: rec.Key}).Assign(models.KVRecord{Value: value}).FirstOrCreate(&rec).Error
}
