package collector

import (
	"regexp"
	"strings"

	"StockPredictor/internal/apperr"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

// ErrSymbolFormat is the message for a symbol outside ^[A-Za-z]{1,5}$.
const ErrSymbolFormat = "Stock symbol must be 1-5 alphabetic characters"

// NormalizeSymbol validates a ticker and upper-cases it.
func NormalizeSymbol(symbol string) (string, error) {
	if !symbolPattern.MatchString(symbol) {
		return "", apperr.Validation(ErrSymbolFormat)
	}
	return strings.ToUpper(symbol), nil
}
