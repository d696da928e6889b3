// Package recommend runs the interests pipeline: classify the text, look up
// venues for the label, and have a model format them for the user.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"dosug/internal/catalog"
	"dosug/pkg/categorizer"

	log "github.com/sirupsen/logrus"
)

// ErrNoVenues means neither the classified category nor the fallback has
// any venues. It is an expected outcome, not a failure.
var ErrNoVenues = errors.New("no venues found")

// Formatter turns venues into user-facing prose.
type Formatter interface {
	Format(ctx context.Context, venues []catalog.Venue) (string, error)
}

// Result is the outcome of one successful run.
type Result struct {
	Category string          `json:"category"`        // label as returned by the classifier
	Bucket   string          `json:"bucket"`          // catalog bucket the venues came from
	Venues   []catalog.Venue `json:"venues"`
	Text     string          `json:"text"`
}

// Pipeline wires the classifier, catalog and formatter together.
type Pipeline struct {
	classifier categorizer.Classifier
	catalog    *catalog.Catalog
	formatter  Formatter
}

// NewPipeline creates a pipeline. All dependencies are required.
func NewPipeline(classifier categorizer.Classifier, cat *catalog.Catalog, formatter Formatter) *Pipeline {
	return &Pipeline{classifier: classifier, catalog: cat, formatter: formatter}
}

// Catalog exposes the catalog the pipeline reads from.
func (p *Pipeline) Catalog() *catalog.Catalog { return p.catalog }

// Run executes the steps in order and stops at the first error. Errors from
// the classifier and formatter are returned wrapped; an empty lookup
// returns ErrNoVenues.
func (p *Pipeline) Run(ctx context.Context, interests string) (*Result, error) {
	label, err := p.classifier.Classify(ctx, interests)
	if err != nil {
		return nil, err
	}

	logger := log.WithField("category", label)
	venues := p.catalog.Lookup(label)
	if len(venues) == 0 {
		logger.Info("No venues found for category or fallback")
		return nil, fmt.Errorf("%w for category %q", ErrNoVenues, label)
	}
	bucket := p.catalog.ResolveCategory(label)
	logger.WithField("bucket", bucket).Infof("Selected %d venues", len(venues))

	text, err := p.formatter.Format(ctx, venues)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", label, err)
	}

	return &Result{Category: label, Bucket: bucket, Venues: venues, Text: text}, nil
}
