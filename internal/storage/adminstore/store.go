// Package adminstore persists administrator records in Badger,
// optionally encrypting values with an AEAD cipher.
package adminstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/tehnewb/admingate/internal/core/domain"
	"github.com/tehnewb/admingate/pkg/crypto/adaptive"
)

// Key layout. Record keys carry the token; the generator position
// lives under a single meta key.
var (
	recordPrefix = []byte("admin/")
	highWaterKey = []byte("meta/highwater")
)

// Config configures a Store.
type Config struct {
	// Dir is the Badger data directory.
	Dir string

	// EncryptionKey, when non-nil, must be 32 bytes and enables
	// value encryption.
	EncryptionKey []byte

	// SyncWrites forces fsync on every commit. Credential volume is
	// low, so the default is on.
	SyncWrites bool
}

// Store is a Badger-backed implementation of the registry's
// persistence interface.
type Store struct {
	db     *badger.DB
	cipher *adaptive.Cipher
	logger *slog.Logger
}

// Open opens or creates the store at cfg.Dir.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("adminstore: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("adminstore: open db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if cfg.EncryptionKey != nil {
		c, err := adaptive.New(cfg.EncryptionKey)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("adminstore: cipher: %w", err)
		}
		s.cipher = c
	}

	logger.Info("admin store opened", "dir", cfg.Dir, "encrypted", s.cipher != nil)
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes or overwrites the record stored under rec.Token.
func (s *Store) Put(ctx context.Context, rec *domain.Administrator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := s.encode(rec)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Token), val)
	})
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Delete removes the record stored under tok. Deleting an absent key
// is not an error.
func (s *Store) Delete(ctx context.Context, tok string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(tok))
	})
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Load returns every stored record plus the persisted token generator
// high-water index.
func (s *Store) Load(ctx context.Context) ([]*domain.Administrator, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var (
		records   []*domain.Administrator
		highWater uint64
	)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   64,
			Prefix:         recordPrefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec *domain.Administrator
			err := it.Item().Value(func(val []byte) error {
				var derr error
				rec, derr = s.decode(val)
				return derr
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}

		item, err := txn.Get(highWaterKey)
		switch err {
		case nil:
			return item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("adminstore: high-water value has %d bytes", len(val))
				}
				highWater = binary.BigEndian.Uint64(val)
				return nil
			})
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, 0, domain.ErrStorage.WithCause(err)
	}
	return records, highWater, nil
}

// PutHighWater persists the token generator position.
func (s *Store) PutHighWater(ctx context.Context, n uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(highWaterKey, buf[:])
	})
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

func recordKey(tok string) []byte {
	key := make([]byte, 0, len(recordPrefix)+len(tok))
	key = append(key, recordPrefix...)
	return append(key, tok...)
}

func (s *Store) encode(rec *domain.Administrator) ([]byte, error) {
	val, err := json.Marshal(storedRecord{Username: rec.Username, Token: rec.Token})
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	if s.cipher != nil {
		val, err = s.cipher.Seal(val, nil)
		if err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
	}
	return val, nil
}

func (s *Store) decode(val []byte) (*domain.Administrator, error) {
	if s.cipher != nil {
		var err error
		val, err = s.cipher.Open(val, nil)
		if err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
	}
	var sr storedRecord
	if err := json.Unmarshal(val, &sr); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return &domain.Administrator{Username: sr.Username, Token: sr.Token}, nil
}

// storedRecord is the on-disk value shape. Access state is runtime
// only and never persisted.
type storedRecord struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
