package vendb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const (
	dbName           = "vend.db"
	dbFilePermission = 0600
)

var (
	settingsBucket = []byte("settings")

	nameKey   = []byte("name")
	coinsKey  = []byte("coins")
	pricesKey = []byte("prices")
)

// DB stores the machine's settings. Transactions are never written here.
type DB struct {
	*bbolt.DB
	dbPath string
}

// Open opens or creates vend.db inside dir
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Errorf("could not create data dir %v: %v", dir, err)
	}

	path := filepath.Join(dir, dbName)

	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("could not open %v: %v", path, err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, errors.Errorf("could not create settings bucket: %v", err)
	}

	return &DB{
		DB:     bdb,
		dbPath: path,
	}, nil
}

// Path returns the location of the database file
func (db *DB) Path() string {
	return db.dbPath
}
