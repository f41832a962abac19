package group

import "encoding/json"

// FetchedData maps an account identifier to its value in a group.
// Values are numeric text: decimal integers, 0x-prefixed hex or float literals.
type FetchedData map[string]json.Number

// ValueType tells consumers how a group value may be used.
type ValueType string

const (
	// Score means a holder may claim any value lower than the stored one.
	ValueTypeScore ValueType = "Score"
	// Info means a holder must claim the exact stored value.
	ValueTypeInfo ValueType = "Info"
)

type AccountSource string

const (
	AccountSourceEthereum AccountSource = "ethereum"
	AccountSourceGithub   AccountSource = "github"
	AccountSourceTwitter  AccountSource = "twitter"
	AccountSourceTest     AccountSource = "test"
	AccountSourceDev      AccountSource = "dev"
)

type Tag string

const (
	TagNFT             Tag = "NFT"
	TagMainnet         Tag = "Mainnet"
	TagAsset           Tag = "Asset"
	TagUser            Tag = "User"
	TagVote            Tag = "Vote"
	TagPOAP            Tag = "POAP"
	TagENS             Tag = "ENS"
	TagLens            Tag = "Lens"
	TagWeb3Social      Tag = "Web3Social"
	TagSybilResistance Tag = "SybilResistance"
	TagEth2            Tag = "Eth2"
	TagGitcoinGrant    Tag = "GitcoinGrant"
	TagGameJutsu       Tag = "GameJutsu"
	TagTwitter         Tag = "twitter"
	TagFactory         Tag = "Factory"
	TagBadgeHolders    Tag = "BadgeHolders"
	TagCoreTeam        Tag = "CoreTeam"
)

// Properties are derived from a group's data right before it is stored.
type Properties struct {
	AccountsNumber   int            `json:"accountsNumber"`
	TierDistribution map[string]int `json:"tierDistribution"`
}

type Metadata struct {
	Name           string          `json:"name"`
	Timestamp      int64           `json:"timestamp"`
	GeneratedBy    string          `json:"generatedBy,omitempty"`
	ValueType      ValueType       `json:"valueType"`
	AccountSources []AccountSource `json:"accountSources"`
	Tags           []Tag           `json:"tags"`
	Properties     *Properties     `json:"properties,omitempty"`
}

// GroupWithData is what a generator produces.
type GroupWithData struct {
	Metadata
	Data FetchedData `json:"data"`
}

// ResolvedGroupWithData is the persisted shape of a group.
type ResolvedGroupWithData struct {
	GroupWithData
	ResolvedIdentifierData FetchedData `json:"resolvedIdentifierData"`
}

// Search selects stored groups by name. When Latest is set only the most
// recent version is returned; a non-zero Timestamp selects that version.
type Search struct {
	GroupName string
	Latest    bool
	Timestamp int64
}
