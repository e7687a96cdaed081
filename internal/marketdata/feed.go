package marketdata

import "time"

// FeatureProvider supplies a finished indicator snapshot per symbol per cycle.
// Indicator computation lives entirely behind this interface; the decision
// engine only consumes the result.
type FeatureProvider interface {
	GetSnapshot(symbol string) (Snapshot, error)
}

// CandleProvider supplies recent OHLC history for gap detection
type CandleProvider interface {
	GetCandles(symbol string, limit int) ([]Candle, error)
}

// OptionsDataFeed supplies options chain data. Implementations own their own
// network timeouts; everything handed to the engine is already fetched.
type OptionsDataFeed interface {
	// GetOptionsChain returns the chain for a symbol. A zero expiration
	// means all listed expirations.
	GetOptionsChain(symbol string, expiration time.Time) ([]OptionContract, error)

	// GetExpirationDates returns listed expirations in ascending order.
	GetExpirationDates(symbol string) ([]time.Time, error)

	// GetATMOption returns the contract of the given type whose strike is
	// closest to the current underlying price, or nil if the chain is empty.
	GetATMOption(symbol string, expiration time.Time, optType OptionType) (*OptionContract, error)

	// GetOptionQuote returns the current quote for a single contract.
	GetOptionQuote(contractSymbol string) (*Quote, error)
}
