package pricing

import (
	"sort"

	"github.com/go-errors/errors"
)

// CoinTable maps a coin label to its value in cents
type CoinTable map[string]int64

// PriceTable maps an item label to its price in cents
type PriceTable map[string]int64

// DefaultCoins are the denominations accepted out of the box
var DefaultCoins = CoinTable{
	"5":   5,
	"10":  10,
	"25":  25,
	"100": 100,
	"200": 200,
}

// DefaultPrices are the items sold out of the box
var DefaultPrices = PriceTable{
	"surprise": 150,
	"pop":      50,
	"chips":    75,
	"choc":     50,
	"beer":     200,
}

// Tables holds the coin and price tables. It never changes after New.
type Tables struct {
	coins  CoinTable
	prices PriceTable
}

// New validates both tables and returns an immutable copy of them.
// Labels listed in reserved can be neither coins nor items.
func New(coins CoinTable, prices PriceTable, reserved ...string) (*Tables, error) {
	if len(coins) == 0 {
		return nil, errors.New("coin table is empty")
	}

	if len(prices) == 0 {
		return nil, errors.New("price table is empty")
	}

	t := &Tables{
		coins:  make(CoinTable, len(coins)),
		prices: make(PriceTable, len(prices)),
	}

	for label, value := range coins {
		if err := checkEntry("coin", label, value, reserved); err != nil {
			return nil, err
		}

		t.coins[label] = value
	}

	for label, price := range prices {
		if err := checkEntry("item", label, price, reserved); err != nil {
			return nil, err
		}

		if _, ok := t.coins[label]; ok {
			return nil, errors.Errorf("label %q is both a coin and an item", label)
		}

		t.prices[label] = price
	}

	return t, nil
}

// MustDefault returns the default tables and panics if they are invalid
func MustDefault(reserved ...string) *Tables {
	t, err := New(DefaultCoins, DefaultPrices, reserved...)
	if err != nil {
		panic(err)
	}

	return t
}

func checkEntry(kind string, label string, amount int64, reserved []string) error {
	if label == "" {
		return errors.Errorf("%s with empty label", kind)
	}

	if amount <= 0 {
		return errors.Errorf("%s %q has non-positive amount %d", kind, label, amount)
	}

	for _, r := range reserved {
		if label == r {
			return errors.Errorf("%s label %q is reserved", kind, label)
		}
	}

	return nil
}

// LookupCoin returns the value of the coin with the given label
func (t *Tables) LookupCoin(label string) (int64, bool) {
	value, ok := t.coins[label]
	return value, ok
}

// LookupPrice returns the price of the item with the given label
func (t *Tables) LookupPrice(label string) (int64, bool) {
	price, ok := t.prices[label]
	return price, ok
}

// ComputeChange returns what is left of total after paying price.
// A negative result means the funds are insufficient.
func ComputeChange(total int64, price int64) int64 {
	return total - price
}

// Coins returns the coin labels ordered by value
func (t *Tables) Coins() []string {
	return sortedLabels(t.coins)
}

// Items returns the item labels ordered by price
func (t *Tables) Items() []string {
	return sortedLabels(t.prices)
}

// CoinTable returns a copy of the coin table
func (t *Tables) CoinTable() CoinTable {
	coins := make(CoinTable, len(t.coins))
	for label, value := range t.coins {
		coins[label] = value
	}

	return coins
}

// PriceTable returns a copy of the price table
func (t *Tables) PriceTable() PriceTable {
	prices := make(PriceTable, len(t.prices))
	for label, price := range t.prices {
		prices[label] = price
	}

	return prices
}

func sortedLabels(m map[string]int64) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool {
		if m[labels[i]] != m[labels[j]] {
			return m[labels[i]] < m[labels[j]]
		}

		return labels[i] < labels[j]
	})

	return labels
}
