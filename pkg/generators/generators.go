// Package generators builds a generator.Library from a YAML file describing
// generators of a few built-in kinds.
//
//	generators:
//	  - name: ethereum-influencers
//	    kind: hive-cluster
//	    frequency: daily
//	    group:
//	      valueType: Score
//	      tags: [twitter]
//	    params:
//	      cluster: Ethereum
//	      maxItems: 500
//	      minFollowers: 1000
package generators

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/providers/hive"
	"gopkg.in/yaml.v3"
)

const (
	KindStatic      = "static"
	KindUnion       = "union"
	KindHiveCluster = "hive-cluster"
	KindHiveRank    = "hive-rank"
)

var ErrHiveNotConfigured = errors.New("hive provider not configured, set hive.api_key")

// Deps are the providers generators may call. Generators whose provider is
// nil still load, and fail when run.
type Deps struct {
	Hive *hive.Provider
}

type libraryFile struct {
	Generators []entry `yaml:"generators"`
}

type entry struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Frequency string     `yaml:"frequency"`
	DependsOn []string   `yaml:"dependsOn"`
	Group     groupEntry `yaml:"group"`
	Params    yaml.Node  `yaml:"params"`
}

type groupEntry struct {
	Name           string                `yaml:"name"`
	ValueType      group.ValueType       `yaml:"valueType"`
	Tags           []group.Tag           `yaml:"tags"`
	AccountSources []group.AccountSource `yaml:"accountSources"`
}

type builder func(e entry, meta group.Metadata, deps Deps) (generator.Generator, error)

var builders = map[string]builder{
	KindStatic:      buildStatic,
	KindUnion:       buildUnion,
	KindHiveCluster: buildHiveCluster,
	KindHiveRank:    buildHiveRank,
}

// Kinds lists the supported generator kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func LoadLibrary(path string, deps Deps) (*generator.Library, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator library: %w", err)
	}
	lib, err := ParseLibrary(content, deps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

func ParseLibrary(content []byte, deps Deps) (*generator.Library, error) {
	var file libraryFile
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing generator library: %w", err)
	}

	defs := make([]generator.Definition, 0, len(file.Generators))
	for _, e := range file.Generators {
		def, err := e.definition(deps)
		if err != nil {
			return nil, fmt.Errorf("generator %q: %w", e.Name, err)
		}
		defs = append(defs, def)
	}
	return generator.NewLibrary(defs...)
}

func (e entry) definition(deps Deps) (generator.Definition, error) {
	build, ok := builders[e.Kind]
	if !ok {
		return generator.Definition{}, fmt.Errorf("unknown kind %q", e.Kind)
	}

	frequency := generator.FrequencyOnce
	if e.Frequency != "" {
		f, err := generator.ParseFrequency(e.Frequency)
		if err != nil {
			return generator.Definition{}, err
		}
		frequency = f
	}

	meta, err := e.metadata()
	if err != nil {
		return generator.Definition{}, err
	}

	gen, err := build(e, meta, deps)
	if err != nil {
		return generator.Definition{}, err
	}

	return generator.Definition{
		Name:      e.Name,
		DependsOn: e.DependsOn,
		Frequency: frequency,
		Generator: gen,
	}, nil
}

func (e entry) metadata() (group.Metadata, error) {
	meta := group.Metadata{
		Name:           e.Group.Name,
		ValueType:      e.Group.ValueType,
		Tags:           e.Group.Tags,
		AccountSources: e.Group.AccountSources,
	}
	if meta.Name == "" {
		meta.Name = e.Name
	}
	switch meta.ValueType {
	case "":
		meta.ValueType = group.ValueTypeScore
	case group.ValueTypeScore, group.ValueTypeInfo:
	default:
		return meta, fmt.Errorf("unknown value type %q", meta.ValueType)
	}
	if len(meta.AccountSources) == 0 && (e.Kind == KindHiveCluster || e.Kind == KindHiveRank) {
		meta.AccountSources = []group.AccountSource{group.AccountSourceTwitter}
	}
	return meta, nil
}

// decodeParams decodes the params node of e into out. Missing params leave
// out untouched.
func decodeParams(e entry, out interface{}) error {
	if e.Params.Kind == 0 {
		return nil
	}
	if err := e.Params.Decode(out); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

// newGroup stamps meta with the generation timestamp. Slices are copied so
// groups of different runs never share backing arrays.
func newGroup(meta group.Metadata, timestamp int64, data group.FetchedData) group.GroupWithData {
	meta.Timestamp = timestamp
	meta.Tags = append([]group.Tag(nil), meta.Tags...)
	meta.AccountSources = append([]group.AccountSource(nil), meta.AccountSources...)
	return group.GroupWithData{Metadata: meta, Data: data}
}
