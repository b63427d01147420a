package collector

import (
	"testing"

	"StockPredictor/internal/apperr"
)

func TestNormalizeSymbol(t *testing.T) {
	valid := map[string]string{"aapl": "AAPL", "T": "T", "GoOgL": "GOOGL"}
	for in, want := range valid {
		got, err := NormalizeSymbol(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %q, got %q (%v)", in, want, got, err)
		}
	}

	for _, in := range []string{"", "INVALID123", "TOOLONG", "BRK.B", "AB1", " AAPL", "ÄBC"} {
		_, err := NormalizeSymbol(in)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("%q: expected validation error, got %v", in, err)
			continue
		}
		if err.Error() != ErrSymbolFormat {
			t.Errorf("%q: unexpected message %q", in, err.Error())
		}
	}
}
