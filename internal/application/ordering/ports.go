package ordering

import (
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/shopspring/decimal"
)

type IDGenerator interface {
	NewID() string
}

// Orderer is the part of the store the use case drives.
type Orderer interface {
	Order(lines []store.OrderLine) (decimal.Decimal, error)
}
