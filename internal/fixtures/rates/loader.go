// Package rates loads the static exchange-rate table shipped with the
// service. The embedded snapshot of the ECB eurofxref feed is used unless a
// path to a newer file is supplied.
package rates

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/amirasaad/bankaccount/pkg/exchange"
)

//go:embed eurofxref.csv
var eurofxrefCSV string

// Load parses an exchange-rate table from the given CSV file. If path is
// empty, the embedded snapshot is used.
func Load(path string) (*exchange.Table, error) {
	if path == "" {
		return exchange.ParseECB(strings.NewReader(eurofxrefCSV))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange rate file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return exchange.ParseECB(f)
}
