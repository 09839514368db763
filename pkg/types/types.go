package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Mode selects which transaction field a search varies.
type Mode int

const (
	ModeAuto   Mode = iota // No override, pick from the prefix length
	ValueField             // Vary the transferred value (domain up to 2^128)
	GasField               // Vary the gas limit (domain up to 2^64)
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ValueField:
		return "value"
	case GasField:
		return "gas"
	default:
		return "auto"
	}
}

// ParseMode parses a mode flag value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "value":
		return ValueField, nil
	case "gas":
		return GasField, nil
	default:
		return ModeAuto, fmt.Errorf("unknown iteration mode %q (want auto, value or gas)", s)
	}
}

// Fillable is the outcome of a completed search: the winning scalar and
// the field it belongs to. It never carries a full transaction.
type Fillable struct {
	Mode      Mode
	Candidate uint256.Int
}

// ValueFill returns a Fillable for the value field.
func ValueFill(v *uint256.Int) Fillable {
	return Fillable{Mode: ValueField, Candidate: *v}
}

// GasFill returns a Fillable for the gas field.
func GasFill(g uint64) Fillable {
	f := Fillable{Mode: GasField}
	f.Candidate.SetUint64(g)
	return f
}

// Gas returns the candidate as a gas limit.
func (f Fillable) Gas() uint64 {
	return f.Candidate.Uint64()
}

// String renders the fillable as "value(123)" or "gas(21777)".
func (f Fillable) String() string {
	return fmt.Sprintf("%s(%s)", f.Mode, f.Candidate.Dec())
}

// Result represents a mining result
type Result struct {
	Fillable
	Hash     common.Hash
	Worker   int
	Round    int
	Attempts uint64
	Duration time.Duration
}

// Rate returns hashes per second, or 0 when no time elapsed.
func (r *Result) Rate() float64 {
	if r.Duration.Seconds() <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Duration.Seconds()
}

// Partition is a half-open range [Start, Start+Width) of offsets from the
// draft's original field value.
type Partition struct {
	Start uint256.Int
	Width uint256.Int
}

// End returns Start+Width.
func (p Partition) End() *uint256.Int {
	return new(uint256.Int).Add(&p.Start, &p.Width)
}

// WorkerConfig contains configuration for individual workers
type WorkerConfig struct {
	Mode      Mode
	Prefix    string // lower-case hex
	Nibbles   []byte // pre-decoded prefix nibbles for the hot path
	Partition Partition
}
