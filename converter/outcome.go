package converter

// Outcome tells the caller why a Convert call returned.
type Outcome uint8

const (
	// Complete means every source byte was consumed and no partial
	// sequence is pending.
	Complete Outcome = iota
	// DestinationFull means a decoded code point was ready but the
	// destination had no room. Unconsumed source remains.
	DestinationFull
	// SourceExhausted means the source ended inside a sequence; the
	// dangling bytes were moved into the residue.
	SourceExhausted
)

// Incomplete reports whether the caller has to act (drain or refill) before
// the conversion can continue.
func (o Outcome) Incomplete() bool {
	return o != Complete
}

func (o Outcome) String() string {
	switch o {
	case Complete:
		return "complete"
	case DestinationFull:
		return "destination-full"
	case SourceExhausted:
		return "source-exhausted"
	}
	return "unknown"
}
