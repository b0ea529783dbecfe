package vendb

import (
	"github.com/go-errors/errors"
	"github.com/the-lightning-land/vendd/pricing"
)

func (db *DB) GetName() (string, error) {
	var name string

	if _, err := db.getJSON(settingsBucket, nameKey, &name); err != nil {
		return "", err
	}

	return name, nil
}

func (db *DB) SetName(name string) error {
	return db.setJSON(settingsBucket, nameKey, name)
}

// GetCoinTable returns nil when no coin table was saved yet
func (db *DB) GetCoinTable() (pricing.CoinTable, error) {
	var coins pricing.CoinTable

	found, err := db.getJSON(settingsBucket, coinsKey, &coins)
	if err != nil || !found {
		return nil, err
	}

	return coins, nil
}

func (db *DB) SetCoinTable(coins pricing.CoinTable) error {
	return db.setJSON(settingsBucket, coinsKey, coins)
}

// GetPriceTable returns nil when no price table was saved yet
func (db *DB) GetPriceTable() (pricing.PriceTable, error) {
	var prices pricing.PriceTable

	found, err := db.getJSON(settingsBucket, pricesKey, &prices)
	if err != nil || !found {
		return nil, err
	}

	return prices, nil
}

func (db *DB) SetPriceTable(prices pricing.PriceTable) error {
	return db.setJSON(settingsBucket, pricesKey, prices)
}

// LoadTables reads the saved tables, seeding any missing one with the given
// defaults first. The result is validated with reserved labels excluded.
func (db *DB) LoadTables(coins pricing.CoinTable, prices pricing.PriceTable, reserved ...string) (*pricing.Tables, error) {
	saved, err := db.GetCoinTable()
	if err != nil {
		return nil, errors.Errorf("could not read coin table: %v", err)
	}

	if saved == nil {
		if err := db.SetCoinTable(coins); err != nil {
			return nil, errors.Errorf("could not seed coin table: %v", err)
		}
	} else {
		coins = saved
	}

	savedPrices, err := db.GetPriceTable()
	if err != nil {
		return nil, errors.Errorf("could not read price table: %v", err)
	}

	if savedPrices == nil {
		if err := db.SetPriceTable(prices); err != nil {
			return nil, errors.Errorf("could not seed price table: %v", err)
		}
	} else {
		prices = savedPrices
	}

	tables, err := pricing.New(coins, prices, reserved...)
	if err != nil {
		return nil, errors.Errorf("invalid tables in %v: %v", db.dbPath, err)
	}

	return tables, nil
}
