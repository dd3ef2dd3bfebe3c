package entity

// Holdings maps a stock symbol to the number of shares owned. Quantities are
// always positive; a symbol whose quantity reaches zero has no entry.
type Holdings map[string]int64

// Clone returns an independent copy of the holdings map.
func (h Holdings) Clone() Holdings {
	out := make(Holdings, len(h))
	for symbol, quantity := range h {
		out[symbol] = quantity
	}
	return out
}
