package vendb

import (
	"bytes"
	"encoding/json"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

func (db *DB) setJSON(bucket []byte, key []byte, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Errorf("could not marshal %s: %v", key, err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		return bucket.Put(key, payload)
	})
}

// getJSON reads key into v and reports whether a value was present
func (db *DB) getJSON(bucket []byte, key []byte, v interface{}) (bool, error) {
	found := false

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucket)
		if bucket == nil {
			return nil
		}

		payload := bucket.Get(key)
		if payload == nil || bytes.Equal(payload, []byte("null")) {
			return nil
		}

		if err := json.Unmarshal(payload, v); err != nil {
			return errors.Errorf("could not unmarshal %s: %v", key, err)
		}

		found = true

		return nil
	})

	if err != nil {
		return false, err
	}

	return found, nil
}
