// Package provenance explains where an object came from: the declarations,
// observations and inferences that produced it, with observations enriched
// by the normalizer run and the boefje plugin behind them.
package provenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/objectstore"
	"github.com/zero-day-ai/inventory/ooi"
)

// OriginLister lists the origins of a reference.
type OriginLister interface {
	ListOrigins(ctx context.Context, ref ooi.Reference, validTime time.Time) ([]ooi.Origin, error)
}

// MetaStore serves normalizer metadata. It is implemented by *objectstore.Client.
type MetaStore interface {
	Login(ctx context.Context) error
	NormalizerMeta(ctx context.Context, taskID string) (objectstore.NormalizerMeta, error)
}

// PluginCatalog resolves plugin ids per organization. It is implemented by
// *katalogus.Client.
type PluginCatalog interface {
	Plugin(ctx context.Context, organization, id string) (*katalogus.Plugin, error)
}

// OriginData is an origin together with whatever enrichment succeeded.
// Normalizer and Boefje are only ever set for observations.
type OriginData struct {
	Origin     ooi.Origin                 `json:"origin"`
	Normalizer objectstore.NormalizerMeta `json:"normalizer,omitempty"`
	Boefje     *katalogus.Plugin          `json:"boefje,omitempty"`
}

// Enriched reports whether both normalizer and boefje were resolved.
func (d OriginData) Enriched() bool {
	return d.Normalizer != nil && d.Boefje != nil
}

// Aggregator builds the provenance of objects.
//
// Aggregation never fails: a failed origin listing yields three empty
// sequences, and a failed enrichment leaves only that origin unenriched.
// Origins are enriched one after another, in listing order.
type Aggregator struct {
	origins OriginLister
	store   MetaStore
	catalog PluginCatalog
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns an aggregator.
func New(origins OriginLister, store MetaStore, catalog PluginCatalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		origins: origins,
		store:   store,
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "provenance")
	return a
}

// Aggregate returns the origins of ref as of validTime, partitioned by origin
// type. Each partition keeps the order of the listing. Plugins are looked up
// in the catalog of organization.
func (a *Aggregator) Aggregate(ctx context.Context, ref ooi.Reference, validTime time.Time, organization string) (declarations, observations, inferences []OriginData) {
	declarations, observations, inferences = []OriginData{}, []OriginData{}, []OriginData{}

	origins, err := a.origins.ListOrigins(ctx, ref, validTime)
	if err != nil {
		a.logger.Error("failed to list origins",
			"reference", ref.String(),
			"error", err)
		return declarations, observations, inferences
	}

	for _, origin := range origins {
		data := OriginData{Origin: origin}

		if origin.Type == ooi.OriginObservation {
			if ctx.Err() != nil {
				a.logger.Warn("skipping origin enrichment", "reference", ref.String(), "error", ctx.Err())
			} else if err := a.enrich(ctx, &data, organization); err != nil {
				a.logger.Warn("failed to enrich origin",
					"reference", ref.String(),
					"method", origin.Method,
					"task_id", origin.TaskID,
					"error", err)
			}
		}

		switch origin.Type {
		case ooi.OriginDeclaration:
			declarations = append(declarations, data)
		case ooi.OriginObservation:
			observations = append(observations, data)
		case ooi.OriginInference:
			inferences = append(inferences, data)
		}
	}

	return declarations, observations, inferences
}

func (a *Aggregator) enrich(ctx context.Context, data *OriginData, organization string) error {
	if err := a.store.Login(ctx); err != nil {
		return err
	}

	meta, err := a.store.NormalizerMeta(ctx, data.Origin.TaskID)
	if err != nil {
		return fmt.Errorf("normalizer meta: %w", err)
	}
	boefjeID, err := meta.BoefjeID()
	if err != nil {
		return err
	}
	data.Normalizer = meta

	plugin, err := a.catalog.Plugin(ctx, organization, boefjeID)
	if err != nil {
		return fmt.Errorf("boefje %s: %w", boefjeID, err)
	}
	data.Boefje = plugin
	return nil
}
