package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"dosug/internal/util"

	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrCatalogLoad wraps every failure to read or decode the dataset.
var ErrCatalogLoad = errors.New("catalog load failed")

// maxReportedViolations limits how many schema errors end up in one error value.
const maxReportedViolations = 5

// datasetSchema describes the dataset: an object whose values are arrays of
// venue objects with a non-empty name.
const datasetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name":        {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "address":     {"type": "string"},
        "url":         {"type": "string"},
        "price":       {"type": ["string", "number"]}
      }
    }
  }
}`

// Load reads a JSON (default) or YAML (.yaml/.yml) dataset.
func Load(path string, opts ...Option) (*Catalog, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	c := newCatalog(opts)
	if c.validate {
		violations, err := validateDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCatalogLoad, path, err)
		}
		if len(violations) > 0 {
			if len(violations) > maxReportedViolations {
				violations = append(violations[:maxReportedViolations], fmt.Sprintf("and %d more", len(violations)-maxReportedViolations))
			}
			return nil, fmt.Errorf("%w: %s does not match the dataset schema: %s", ErrCatalogLoad, path, strings.Join(violations, "; "))
		}
	}

	data, err := decodeVenues(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogLoad, path, err)
	}

	cat := New(data, opts...)
	log.Infof("Loaded venue catalog from %s: %d categories, %d venues", path, len(cat.venues), cat.Len())
	return cat, nil
}

// LoadOrEmpty is Load that never fails: errors are logged and an empty
// catalog with only the fallback bucket is returned.
func LoadOrEmpty(path string, opts ...Option) *Catalog {
	cat, err := Load(path, opts...)
	if err != nil {
		log.Errorf("Venue catalog unavailable, continuing with an empty catalog: %v", err)
		return Empty(opts...)
	}
	return cat
}

// Validate checks a dataset file against the schema and returns every
// violation found. A non-nil error means the file could not be read at all.
func Validate(path string) ([]string, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	violations, err := validateDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogLoad, path, err)
	}
	return violations, nil
}

func readDocument(path string) (any, error) {
	content, err := util.ReadTextFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &doc)
	default:
		err = json.Unmarshal(content, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrCatalogLoad, path, err)
	}
	return doc, nil
}

func validateDocument(doc any) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(datasetSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	sort.Strings(violations)
	return violations, nil
}

func decodeVenues(doc any) (map[string][]Venue, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level must be an object of categories, got %T", doc)
	}

	data := make(map[string][]Venue, len(root))
	for category, value := range root {
		items, ok := value.([]any)
		if !ok {
			if value == nil {
				data[category] = nil
				continue
			}
			return nil, fmt.Errorf("category %q must be a list, got %T", category, value)
		}
		list := make([]Venue, 0, len(items))
		for i, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("category %q entry %d must be an object, got %T", category, i, item)
			}
			v := venueFromFields(fields)
			if v.Name == "" {
				log.Warnf("Skipping unnamed venue %d in category %q", i, category)
				continue
			}
			list = append(list, v)
		}
		data[category] = list
	}
	return data, nil
}

func venueFromFields(fields map[string]any) Venue {
	var v Venue
	for key, val := range fields {
		switch strings.ToLower(key) {
		case "name":
			v.Name = stringify(val)
		case "description":
			v.Description = stringify(val)
		case "address":
			v.Address = stringify(val)
		case "price":
			v.Price = stringify(val)
		case "url":
			v.URL = stringify(val)
		default:
			if v.Extra == nil {
				v.Extra = map[string]any{}
			}
			v.Extra[key] = val
		}
	}
	return v
}

func stringify(val any) string {
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return fmt.Sprint(t)
	}
}
