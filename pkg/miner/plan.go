package miner

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

// budgetPrec covers 16^64 * ln(100) (259 integer bits) with room to spare.
const budgetPrec = 512

// ln(100): trials needed per unit of 1/q for a 1% miss probability.
var ln100, _ = new(big.Float).SetPrec(budgetPrec).SetString(
	"4.605170185988091368035982909368728415202202977257545952066655801935145219354704960471994410179196596683935568084572497")

var (
	// Exclusive upper bounds on candidate values per field.
	valueLimit = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	gasLimit   = new(uint256.Int).Lsh(uint256.NewInt(1), 64)
)

// SelectMode picks the field to vary for a prefix of l hex characters: the
// gas limit for short prefixes (l <= threshold), the value otherwise.
func SelectMode(l, threshold int) types.Mode {
	if l <= threshold {
		return types.GasField
	}
	return types.ValueField
}

// EstimateBudget returns ceil(ln(100) * 16^l): the number of uniform trials
// after which the chance of having seen no match for an l-character prefix
// is at most 1%.
func EstimateBudget(l int) *big.Int {
	pow := new(big.Int).Lsh(big.NewInt(1), uint(4*l))
	f := new(big.Float).SetPrec(budgetPrec).SetInt(pow)
	f.Mul(f, ln100)
	b, acc := f.Int(nil)
	if acc == big.Below {
		b.Add(b, big.NewInt(1))
	}
	return b
}

// fieldDomain returns how many offsets are left past offset for the mode's
// field starting at base, capped at want.
func fieldDomain(mode types.Mode, base, offset *uint256.Int, want *big.Int) *uint256.Int {
	limit := valueLimit
	if mode == types.GasField {
		limit = gasLimit
	}
	first, overflow := new(uint256.Int).AddOverflow(base, offset)
	if overflow || !first.Lt(limit) {
		return new(uint256.Int)
	}
	avail := new(uint256.Int).Sub(limit, first)
	if want.Cmp(avail.ToBig()) < 0 {
		w, _ := uint256.FromBig(want)
		return w
	}
	return avail
}

// Partition splits [start, start+domain) into n contiguous ranges whose
// widths differ by at most one. Fewer than n ranges are returned when the
// domain is smaller than n.
func Partition(start, domain *uint256.Int, n int) []types.Partition {
	if n <= 0 || domain.IsZero() {
		return nil
	}
	if domain.IsUint64() && domain.Uint64() < uint64(n) {
		n = int(domain.Uint64())
	}
	count := uint256.NewInt(uint64(n))
	width := new(uint256.Int).Div(domain, count)
	rem := new(uint256.Int).Mod(domain, count).Uint64()

	parts := make([]types.Partition, n)
	next := new(uint256.Int).Set(start)
	for i := range parts {
		parts[i].Start.Set(next)
		parts[i].Width.Set(width)
		if uint64(i) < rem {
			parts[i].Width.AddUint64(&parts[i].Width, 1)
		}
		next.Add(next, &parts[i].Width)
	}
	return parts
}
