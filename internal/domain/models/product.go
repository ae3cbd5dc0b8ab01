package models

import "github.com/shopspring/decimal"

// Product — товар каталога. Каталог ведётся внешним сервисом,
// здесь товар нужен только для чтения актуальной цены.
type Product struct {
	ID       int64
	Title    string
	Price    decimal.Decimal
	IsActive bool
}
