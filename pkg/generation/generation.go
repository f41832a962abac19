package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/resolver"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything a Service needs.
type Config struct {
	Library        *generator.Library
	GroupStore     group.Store
	GeneratorStore generator.Store
	Resolver       resolver.Resolver
	Log            Logger           // optional; nil = no logging
	Now            func() time.Time // optional; defaults to time.Now
}

// Service runs generators and persists the groups they produce.
type Service struct {
	lib            *generator.Library
	groupStore     group.Store
	generatorStore generator.Store
	resolver       resolver.Resolver
	log            Logger
	now            func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Library == nil || cfg.GroupStore == nil || cfg.GeneratorStore == nil || cfg.Resolver == nil {
		return nil, errors.New("generation service requires a library, both stores and a resolver")
	}
	s := &Service{
		lib:            cfg.Library,
		groupStore:     cfg.GroupStore,
		generatorStore: cfg.GeneratorStore,
		resolver:       cfg.Resolver,
		log:            cfg.Log,
		now:            cfg.Now,
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *Service) Library() *generator.Library { return s.lib }

// Options controls a single generator run.
type Options struct {
	// Timestamp of the generation in unix seconds; now when nil.
	Timestamp *int64
	// AdditionalData is merged into every produced group and wins over
	// generated entries.
	AdditionalData group.FetchedData
	// FirstGenerationOnly skips generators that already have a record.
	FirstGenerationOnly bool
}

// AllOptions controls GenerateAllGroups. An empty Frequency runs every
// generator.
type AllOptions struct {
	Options
	Frequency generator.Frequency
}

// ExecutionOrder returns the library generators in the order
// GenerateAllGroups runs them, restricted to frequency when it is set.
func (s *Service) ExecutionOrder(frequency generator.Frequency) ([]Level, error) {
	levels, err := ComputeLevelOfDependencies(s.lib, s.lib.Names())
	if err != nil {
		return nil, err
	}

	var order []Level
	for _, l := range SortByLevel(levels) {
		def, _ := s.lib.Get(l.Name)
		if frequency != "" && def.Frequency != frequency {
			continue
		}
		order = append(order, l)
	}
	return order, nil
}

// GenerateAllGroups runs generators one after the other, dependencies
// first, so each one sees what the previous ones stored. It stops at the
// first failure.
func (s *Service) GenerateAllGroups(ctx context.Context, opts AllOptions) error {
	order, err := s.ExecutionOrder(opts.Frequency)
	if err != nil {
		return err
	}

	for _, l := range order {
		if err := s.GenerateGroups(ctx, l.Name, opts.Options); err != nil {
			return fmt.Errorf("generating %s: %w", l.Name, err)
		}
	}
	return nil
}

// GenerateGroups runs one generator, enriches each produced group and saves
// it, then records the generation. The record is only written once every
// group has been saved.
func (s *Service) GenerateGroups(ctx context.Context, generatorName string, opts Options) error {
	def, ok := s.lib.Get(generatorName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGenerator, generatorName)
	}

	lastGenerations, err := s.generatorStore.Search(ctx, generator.Search{
		GeneratorName: generatorName,
		Latest:        true,
	})
	if err != nil {
		return fmt.Errorf("could not look up previous generations: %w", err)
	}
	if opts.FirstGenerationOnly && len(lastGenerations) > 0 {
		s.log.Infof("%s already generated at %s. Skipping", generatorName, time.Unix(lastGenerations[0].Timestamp, 0).UTC())
		return nil
	}

	genCtx := s.createContext(opts.Timestamp)

	s.log.Infof("Generating groups (%s)", generatorName)
	groups, err := def.Generator.Generate(ctx, genCtx, s.groupStore)
	if err != nil {
		return err
	}

	for _, g := range groups {
		if err := s.processGroup(ctx, generatorName, genCtx, g, opts.AdditionalData); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
	}

	return s.generatorStore.Save(ctx, generator.Record{
		Name:      generatorName,
		Timestamp: genCtx.Timestamp,
	})
}

func (s *Service) createContext(timestamp *int64) generator.GenerationContext {
	if timestamp != nil {
		return generator.GenerationContext{Timestamp: *timestamp}
	}
	return generator.GenerationContext{Timestamp: s.now().Unix()}
}

func (s *Service) processGroup(ctx context.Context, generatorName string, genCtx generator.GenerationContext, g group.GroupWithData, additionalData group.FetchedData) error {
	if g.Name == "" {
		return errors.New("group has no name")
	}
	if len(g.AccountSources) == 0 {
		return errors.New("group has no account sources")
	}
	if g.Timestamp == 0 {
		g.Timestamp = genCtx.Timestamp
	}
	g.GeneratedBy = generatorName

	if additionalData != nil {
		s.log.Infof("Inserting %d additional data", len(additionalData))
	}
	g.Data = group.MergeAdditionalData(g.Data, additionalData)

	var err error
	g.Data, err = group.FormatData(g.Data)
	if err != nil {
		return err
	}

	// Resolvers may hand back raw values, so the resolved mapping goes
	// through the same formatting as the data.
	resolvedIdentifierData, err := s.resolver.ResolveAll(ctx, g.Data)
	if err != nil {
		return fmt.Errorf("could not resolve identifiers: %w", err)
	}
	resolvedIdentifierData, err = group.FormatData(resolvedIdentifierData)
	if err != nil {
		return fmt.Errorf("resolved identifiers: %w", err)
	}

	properties := group.ComputeProperties(g.Data)
	g.Properties = &properties

	if err := s.groupStore.Save(ctx, group.ResolvedGroupWithData{
		GroupWithData:          g,
		ResolvedIdentifierData: resolvedIdentifierData,
	}); err != nil {
		return err
	}

	s.log.Infof("Group %s containing %d elements saved.", g.Name, len(g.Data))
	return nil
}
