package finance

// Balance derives an account balance from its opening amount and the signed
// amounts of every transaction referencing it.
func Balance(initial int64, amounts []int64) int64 {
	total := initial
	for _, a := range amounts {
		total += a
	}
	return total
}

// Drift is the difference between a stored running balance and the balance
// derived from source rows. Zero means the two agree.
func Drift(stored, initial int64, amounts []int64) int64 {
	return stored - Balance(initial, amounts)
}

// Move describes the balance deltas produced by editing a transaction that
// may have changed both amount and account.
type Move struct {
	AccountID string
	Delta     int64
}

// EditDeltas returns the per-account deltas that keep balances consistent when
// a transaction changes from (oldAccount, oldAmount) to (newAccount, newAmount).
// Deltas that net to zero are omitted.
func EditDeltas(oldAccount string, oldAmount int64, newAccount string, newAmount int64) []Move {
	if oldAccount == newAccount {
		if d := newAmount - oldAmount; d != 0 {
			return []Move{{AccountID: oldAccount, Delta: d}}
		}
		return nil
	}
	var moves []Move
	if oldAmount != 0 {
		moves = append(moves, Move{AccountID: oldAccount, Delta: -oldAmount})
	}
	if newAmount != 0 {
		moves = append(moves, Move{AccountID: newAccount, Delta: newAmount})
	}
	return moves
}
