package balances

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// Random returns a fake response with interimAvailable and interimBooked
// set to random amounts. It backs the debug mode, which exercises the
// update loop without calling the API.
func Random(currency string) Response {
	amount := func() Amount {
		cents := rand.Int64N(50_000_00)
		return Amount{Amount: decimal.New(cents, -2), Currency: currency}
	}
	return Response{Balances: []Entry{
		{BalanceType: string(InterimAvailable), BalanceAmount: amount()},
		{BalanceType: string(InterimBooked), BalanceAmount: amount()},
	}}
}
