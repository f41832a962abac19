package group

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdditionalData = errors.New("error parsing additional data")
	ErrNotAnAddress          = errors.New("not an ethereum address")
)

// ParseAdditionalData parses "address=value,address,..." into FetchedData.
// A missing value defaults to 1 and an explicit empty one ("address=") to 0.
// Empty segments are skipped. The first invalid segment aborts parsing.
func ParseAdditionalData(s string) (FetchedData, error) {
	data := FetchedData{}
	for _, addressData := range strings.Split(s, ",") {
		if addressData == "" {
			continue
		}
		address, valueStr, hasValue := strings.Cut(addressData, "=")
		if !hasValue {
			valueStr = "1"
		} else if strings.TrimSpace(valueStr) == "" {
			valueStr = "0"
		}

		value, err := CanonicalValue(valueStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAdditionalData, err)
		}
		if !IsEthereumAddress(address) {
			return nil, fmt.Errorf("%s is %w", address, ErrNotAnAddress)
		}
		data[address] = value
	}
	return data, nil
}
