// Package lesson defines the lesson catalog: the document shape, the
// merge-patch used to update it and the free-text search query.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson is the seeded shape of a class listing. Stored documents may carry
// more fields, or other value types, once patched; reads return Document.
type Lesson struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id" yaml:"-" swaggertype:"string"`
	Subject  string             `bson:"subject" json:"subject" yaml:"subject"`
	Location string             `bson:"location" json:"location" yaml:"location"`
	Price    float64            `bson:"price" json:"price" yaml:"price"`
	Spaces   int                `bson:"spaces" json:"spaces" yaml:"spaces"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty" yaml:"image,omitempty"`
}

// Document is a lesson as stored, every field kept with the type it was
// stored with. The identifier is rendered as hex.
type Document map[string]any

// NewDocument copies raw into a Document.
func NewDocument(raw map[string]any) Document {
	d := make(Document, len(raw))
	for k, v := range raw {
		d[k] = v
	}
	if oid, ok := d["_id"].(primitive.ObjectID); ok {
		d["_id"] = oid.Hex()
	}
	return d
}

// ID returns the hex identifier of the document.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Patch holds the fields to overwrite on a lesson. Fields not present are
// left untouched.
type Patch map[string]any

// Fields returns the settable fields of the patch. The identifier is immutable
// and is dropped.
func (p Patch) Fields() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

// UpdateResult reports the outcome of an update. An unknown identifier is not
// an error: it yields MatchedCount 0.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// Repository defines behavior for reading and updating lessons.
type Repository interface {
	List(ctx context.Context) ([]Document, error)
	Search(ctx context.Context, q Query) ([]Document, error)
	Update(ctx context.Context, id string, patch Patch) (UpdateResult, error)
}

var (
	// ErrInvalidID indicates the identifier is not a valid object id.
	ErrInvalidID = errors.New("invalid lesson id")

	// ErrInvalidQuery indicates the search text could not form a pattern.
	ErrInvalidQuery = errors.New("invalid search query")
)

// ParseID converts a hex identifier into an object id.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return oid, nil
}

// Query is a parsed free-text search. Number is set when the text is a
// finite number; the text match applies either way.
type Query struct {
	Text   string
	Number *float64
}

// ParseQuery trims raw and detects a numeric value.
func ParseQuery(raw string) Query {
	q := Query{Text: strings.TrimSpace(raw)}
	if q.Text == "" {
		return q
	}
	if n, err := strconv.ParseFloat(q.Text, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		q.Number = &n
	}
	return q
}

// Pattern returns the text with regular expression metacharacters escaped.
func (q Query) Pattern() string {
	return regexp.QuoteMeta(q.Text)
}

// Compile builds the case-insensitive matcher for the text fields.
func (q Query) Compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + q.Pattern())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return re, nil
}
