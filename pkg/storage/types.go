package storage

import "github.com/sw33tLie/groupgen/pkg/group"

// GroupSummary describes the latest stored version of a group.
type GroupSummary struct {
	Name           string          `json:"name"`
	Timestamp      int64           `json:"timestamp"`
	GeneratedBy    string          `json:"generatedBy"`
	ValueType      group.ValueType `json:"valueType"`
	AccountsNumber int             `json:"accountsNumber"`
	Versions       int             `json:"versions"`
}

// GeneratorStats aggregates stored groups per generator.
type GeneratorStats struct {
	Generator     string `json:"generator"`
	GroupCount    int    `json:"groupCount"`
	VersionCount  int    `json:"versionCount"`
	LastTimestamp int64  `json:"lastTimestamp"`
}
