// Package categorizer maps free-text interests to a venue category label.
package categorizer

import (
	"context"
	"errors"
)

// ErrClassification wraps every failure to obtain a label from the model.
var ErrClassification = errors.New("interest classification failed")

// Known category labels. The classifier may return anything; callers treat
// unknown labels as GENERAL.
const (
	CategoryMusic   = "MUSIC"
	CategoryTheater = "THEATER"
	CategoryMuseum  = "MUSEUM"
	CategoryCinema  = "CINEMA"
	CategoryFood    = "FOOD"
	CategoryBar     = "BAR"
	CategorySport   = "SPORT"
	CategoryNature  = "NATURE"
	CategoryKids    = "KIDS"
	CategoryGeneral = "GENERAL"
)

// Classifier turns a user's description of their interests into a label.
type Classifier interface {
	Classify(ctx context.Context, interests string) (string, error)
}
