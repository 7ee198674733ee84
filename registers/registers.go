// Package registers persists the modem's configuration profile: the
// numbered S-registers (S0, S3, S7, ...) and named boolean flags such
// as command echo. The profile survives restarts so that ATZ restores
// the stored profile while AT&F returns to factory defaults.
package registers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const bucketProfile = "profile"

var (
	// ErrInvalidRegister is returned for S-register indices or values
	// outside the 0..255 range.
	ErrInvalidRegister = errors.New("registers: index or value out of range")
)

// factoryDefaults holds the V.250 register values restored by Reset.
// Registers not listed here default to zero.
var factoryDefaults = map[int]int{
	0:  0,  // rings before auto-answer (disabled)
	2:  43, // escape character '+'
	3:  13, // command line termination, CR
	4:  10, // response formatting, LF
	5:  8,  // command line editing, BS
	7:  50, // seconds to wait for carrier
	10: 14, // carrier loss tolerance, tenths of a second
}

// Store is a bbolt-backed profile store. All methods are safe for
// concurrent use; bbolt serializes the transactions.
type Store struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// Open opens (or creates) the profile database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("registers: open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketProfile))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("registers: create bucket: %w", err)
	}

	logger.Info("profile database opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Get returns the value of S-register index. Unset registers report
// their factory default.
func (s *Store) Get(index int) (int, error) {
	if index < 0 || index > 255 {
		return 0, ErrInvalidRegister
	}

	value := factoryDefaults[index]
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketProfile))
		data := b.Get(registerKey(index))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &value)
	})
	if err != nil {
		return 0, fmt.Errorf("registers: get S%d: %w", index, err)
	}
	return value, nil
}

// Set stores value into S-register index.
func (s *Store) Set(index, value int) error {
	if index < 0 || index > 255 || value < 0 || value > 255 {
		return ErrInvalidRegister
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketProfile))
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return b.Put(registerKey(index), data)
	})
	if err != nil {
		return fmt.Errorf("registers: set S%d: %w", index, err)
	}

	s.logger.Debug("register updated", zap.Int("index", index), zap.Int("value", value))
	return nil
}

// Flag returns the named boolean flag. Unknown flags report false.
func (s *Store) Flag(name string) (bool, error) {
	var value bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketProfile))
		data := b.Get(flagKey(name))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &value)
	})
	if err != nil {
		return false, fmt.Errorf("registers: flag %s: %w", name, err)
	}
	return value, nil
}

// SetFlag stores the named boolean flag.
func (s *Store) SetFlag(name string, on bool) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketProfile))
		data, err := json.Marshal(on)
		if err != nil {
			return err
		}
		return b.Put(flagKey(name), data)
	})
	if err != nil {
		return fmt.Errorf("registers: set flag %s: %w", name, err)
	}

	s.logger.Debug("flag updated", zap.String("name", name), zap.Bool("on", on))
	return nil
}

// Reset drops the whole stored profile, returning every register and
// flag to its factory default.
func (s *Store) Reset() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketProfile)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketProfile))
		return err
	})
	if err != nil {
		return fmt.Errorf("registers: reset: %w", err)
	}

	s.logger.Info("profile reset to factory defaults")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func registerKey(index int) []byte {
	return []byte(fmt.Sprintf("S%d", index))
}

func flagKey(name string) []byte {
	return []byte("flag:" + name)
}
