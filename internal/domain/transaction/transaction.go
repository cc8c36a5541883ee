package transaction

import (
	"fmt"
	"sort"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
)

type Kind string

const (
	KindDeposit Kind = "deposit"
	KindBet     Kind = "bet"
)

// Transaction is a sum type over the two ledger event shapes. Exactly one
// of Deposit or Bet is set, matching Kind.
type Transaction struct {
	Kind       Kind
	OccurredAt time.Time
	Deposit    *deposit.Deposit
	Bet        *bet.Bet
}

func FromDeposit(d deposit.Deposit) Transaction {
	return Transaction{
		Kind:       KindDeposit,
		OccurredAt: d.CreatedAt,
		Deposit:    &d,
	}
}

func FromBet(b bet.Bet) Transaction {
	return Transaction{
		Kind:       KindBet,
		OccurredAt: b.CreatedAt,
		Bet:        &b,
	}
}

func (t Transaction) Validate() error {
	switch t.Kind {
	case KindDeposit:
		if t.Deposit == nil || t.Bet != nil {
			return fmt.Errorf("deposit transaction must carry exactly a deposit")
		}
	case KindBet:
		if t.Bet == nil || t.Deposit != nil {
			return fmt.Errorf("bet transaction must carry exactly a bet")
		}
	default:
		return fmt.Errorf("invalid transaction kind: %s", t.Kind)
	}

	return nil
}

// Amount reports the variant's value: BRL for deposits, credit points for bets.
func (t Transaction) Amount() int64 {
	switch t.Kind {
	case KindDeposit:
		return t.Deposit.Amount
	case KindBet:
		return t.Bet.Amount
	}
	return 0
}

// Merge interleaves both histories ordered by occurrence time, newest first.
func Merge(deposits []deposit.Deposit, bets []bet.Bet) []Transaction {
	out := make([]Transaction, 0, len(deposits)+len(bets))
	for _, d := range deposits {
		out = append(out, FromDeposit(d))
	}
	for _, b := range bets {
		out = append(out, FromBet(b))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	return out
}
