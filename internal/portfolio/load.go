package portfolio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// HoldingInput is an unvalidated holding as entered by a user or read
// from a portfolio file. Fields stay strings so they pass through the
// same validation as interactive input.
type HoldingInput struct {
	Symbol   string `yaml:"symbol"   json:"symbol"`
	Quantity string `yaml:"quantity" json:"quantity"`
	Price    string `yaml:"price"    json:"price"`
}

type portfolioFile struct {
	Holdings []HoldingInput `yaml:"holdings"`
}

// ReadHoldings decodes a YAML portfolio document of the form:
//
//	holdings:
//	  - symbol: RELIANCE
//	    quantity: 10
//	    price: 2450.50
func ReadHoldings(r io.Reader) ([]HoldingInput, error) {
	var f portfolioFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	return f.Holdings, nil
}

// LoadHoldingsFile reads holdings from a YAML file.
func LoadHoldingsFile(path string) ([]HoldingInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio %s: %w", path, err)
	}
	defer f.Close()
	return ReadHoldings(f)
}

// ParseHoldingSpec parses the compact "SYMBOL:QUANTITY:PRICE" form used on
// the command line. Validation of the values is left to AddHolding.
func ParseHoldingSpec(spec string) (HoldingInput, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return HoldingInput{}, fmt.Errorf("%w: holding %q must be SYMBOL:QUANTITY:PRICE", ErrValidationFailed, spec)
	}
	return HoldingInput{Symbol: parts[0], Quantity: parts[1], Price: parts[2]}, nil
}

// AddAll adds every input to the tracker, stopping at the first invalid
// one. Holdings added before the failure are kept.
func (t *Tracker) AddAll(inputs []HoldingInput) error {
	for i, in := range inputs {
		if _, err := t.AddHolding(in.Symbol, in.Quantity, in.Price); err != nil {
			return fmt.Errorf("holding %d (%s): %w", i+1, in.Symbol, err)
		}
	}
	return nil
}
