package group

import (
	"encoding/json"
	"fmt"
	"maps"
	"math/big"
	"regexp"
	"slices"
	"strings"
)

var ethereumAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsEthereumAddress reports whether s is a 0x-prefixed, 40 hex char address.
func IsEthereumAddress(s string) bool {
	return ethereumAddressRegex.MatchString(s)
}

// FormatData returns a copy of data with ethereum address keys lower-cased
// and every value rewritten to its canonical decimal form. Other keys keep
// their case. FormatData(FormatData(d)) == FormatData(d).
//
// Keys are visited in sorted order, so when several addresses differ only in
// case the one sorting last wins. An already lower-cased address sorts after
// any variant holding upper-case letters and always wins.
func FormatData(data FetchedData) (FetchedData, error) {
	out := make(FetchedData, len(data))
	for _, k := range slices.Sorted(maps.Keys(data)) {
		v := data[k]
		value, err := CanonicalValue(string(v))
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", k, err)
		}
		if IsEthereumAddress(k) {
			k = strings.ToLower(k)
		}
		out[k] = value
	}
	return out, nil
}

// CanonicalValue parses numeric text (decimal, 0x hex or a float literal)
// and returns it in decimal notation. Integral values never carry a
// fractional part, so "0x0a", "10" and "10.0" all become "10".
func CanonicalValue(s string) (json.Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty value")
	}

	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		if i, ok := new(big.Int).SetString(hex, 16); ok {
			return json.Number(i.String()), nil
		}
	}
	if i, ok := new(big.Int).SetString(s, 10); ok {
		return json.Number(i.String()), nil
	}

	f, ok := new(big.Float).SetString(s)
	if !ok || f.IsInf() {
		return "", fmt.Errorf("%q is not a number", s)
	}
	if f.IsInt() {
		i, _ := f.Int(nil)
		return json.Number(i.String()), nil
	}
	return json.Number(f.Text('f', -1)), nil
}

// MergeAdditionalData returns data with additional merged in. Entries of
// additional override entries of data with the same key, addresses being
// compared without case. Neither input is modified.
func MergeAdditionalData(data, additional FetchedData) FetchedData {
	if additional == nil {
		return data
	}
	overridden := make(map[string]bool)
	for k := range additional {
		if IsEthereumAddress(k) {
			overridden[strings.ToLower(k)] = true
		}
	}

	out := make(FetchedData, len(data)+len(additional))
	for k, v := range data {
		if IsEthereumAddress(k) && overridden[strings.ToLower(k)] {
			continue
		}
		out[k] = v
	}
	for k, v := range additional {
		out[k] = v
	}
	return out
}
