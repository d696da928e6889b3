package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dosug/internal/catalog"
	"dosug/pkg/categorizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	label string
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, interests string) (string, error) {
	s.calls++
	return s.label, s.err
}

type recordingFormatter struct {
	got   []catalog.Venue
	text  string
	err   error
	calls int
}

func (r *recordingFormatter) Format(ctx context.Context, venues []catalog.Venue) (string, error) {
	r.calls++
	r.got = venues
	return r.text, r.err
}

func venues(prefix string, n int) []catalog.Venue {
	out := make([]catalog.Venue, n)
	for i := range out {
		out[i] = catalog.Venue{Name: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return out
}

func names(vs []catalog.Venue) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return out
}

func TestPipeline_MusicCappedAtFive(t *testing.T) {
	cat := catalog.New(map[string][]catalog.Venue{
		"MUSIC":   venues("Club", 7),
		"GENERAL": venues("Park", 2),
	})
	formatter := &recordingFormatter{text: "1. Club"}
	p := NewPipeline(&stubClassifier{label: "MUSIC"}, cat, formatter)

	res, err := p.Run(context.Background(), "live jazz")
	require.NoError(t, err)

	require.Len(t, formatter.got, 5)
	all := names(cat.Venues("MUSIC"))
	for _, n := range names(formatter.got) {
		assert.Contains(t, all, n)
	}
	assert.Equal(t, "MUSIC", res.Category)
	assert.Equal(t, "MUSIC", res.Bucket)
	assert.Equal(t, "1. Club", res.Text)
	assert.Equal(t, formatter.got, res.Venues)
}

func TestPipeline_UnknownLabelFallsBack(t *testing.T) {
	cat := catalog.New(map[string][]catalog.Venue{
		"MUSIC":   venues("Club", 3),
		"GENERAL": venues("Park", 2),
	})
	formatter := &recordingFormatter{text: "parks"}
	p := NewPipeline(&stubClassifier{label: "SPACE_TRAVEL"}, cat, formatter)

	res, err := p.Run(context.Background(), "something odd")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Park 1", "Park 2"}, names(formatter.got))
	assert.Equal(t, "SPACE_TRAVEL", res.Category)
	assert.Equal(t, "GENERAL", res.Bucket)
}

func TestPipeline_EmptyLabelFallsBack(t *testing.T) {
	cat := catalog.New(map[string][]catalog.Venue{"GENERAL": venues("Park", 1)})
	formatter := &recordingFormatter{text: "ok"}

	_, err := NewPipeline(&stubClassifier{label: "  "}, cat, formatter).Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Park 1"}, names(formatter.got))
}

func TestPipeline_NoVenues(t *testing.T) {
	formatter := &recordingFormatter{}
	p := NewPipeline(&stubClassifier{label: "MUSIC"}, catalog.Empty(), formatter)

	_, err := p.Run(context.Background(), "jazz")
	assert.ErrorIs(t, err, ErrNoVenues)
	assert.Zero(t, formatter.calls, "formatter must not be called without venues")
}

func TestPipeline_ClassifierError(t *testing.T) {
	cause := fmt.Errorf("%w: boom", categorizer.ErrClassification)
	formatter := &recordingFormatter{}
	cat := catalog.New(map[string][]catalog.Venue{"GENERAL": venues("Park", 1)})

	_, err := NewPipeline(&stubClassifier{err: cause}, cat, formatter).Run(context.Background(), "jazz")
	assert.ErrorIs(t, err, categorizer.ErrClassification)
	assert.NotErrorIs(t, err, ErrNoVenues)
	assert.Zero(t, formatter.calls)
}

func TestPipeline_FormatterError(t *testing.T) {
	cause := errors.New("formatting failed")
	cat := catalog.New(map[string][]catalog.Venue{"GENERAL": venues("Park", 1)})

	res, err := NewPipeline(&stubClassifier{label: "FOOD"}, cat, &recordingFormatter{err: cause}).Run(context.Background(), "pizza")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"FOOD"`)
}
