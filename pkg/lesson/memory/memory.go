// Package memory implements an in-memory lesson repository.
package memory

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lessonhub/pkg/lesson"
)

// Repository provides an in-memory implementation of lesson.Repository.
// Documents are kept as raw field maps so patches behave like $set.
type Repository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.M
}

// New creates a repository seeded with lessons. Lessons without an id get one.
func New(lessons ...lesson.Lesson) *Repository {
	r := &Repository{docs: make(map[primitive.ObjectID]bson.M)}
	if _, err := r.Insert(context.Background(), lessons); err != nil {
		panic(err)
	}
	return r
}

// Insert stores lessons and returns how many were added.
func (r *Repository) Insert(ctx context.Context, lessons []lesson.Lesson) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lessons {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		doc, err := toDoc(l)
		if err != nil {
			return 0, err
		}
		r.order = append(r.order, l.ID)
		r.docs[l.ID] = doc
	}
	return len(lessons), nil
}

// List returns all lessons in insertion order.
func (r *Repository) List(ctx context.Context) ([]lesson.Document, error) {
	return r.collect(func(bson.M) bool { return true })
}

// Search returns lessons whose subject or location match the query text, or
// whose price or spaces equal the query number.
func (r *Repository) Search(ctx context.Context, q lesson.Query) ([]lesson.Document, error) {
	re, err := q.Compile()
	if err != nil {
		return nil, err
	}
	return r.collect(func(doc bson.M) bool {
		for _, field := range []string{"subject", "location"} {
			if s, ok := doc[field].(string); ok && re.MatchString(s) {
				return true
			}
		}
		if q.Number == nil {
			return false
		}
		for _, field := range []string{"price", "spaces"} {
			if n, ok := toFloat(doc[field]); ok && n == *q.Number {
				return true
			}
		}
		return false
	})
}

// Update sets the patch fields on the lesson with the given id.
func (r *Repository) Update(ctx context.Context, id string, patch lesson.Patch) (lesson.UpdateResult, error) {
	oid, err := lesson.ParseID(id)
	if err != nil {
		return lesson.UpdateResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[oid]
	if !ok {
		return lesson.UpdateResult{Acknowledged: true}, nil
	}

	res := lesson.UpdateResult{Acknowledged: true, MatchedCount: 1}
	for k, v := range patch.Fields() {
		if old, exists := doc[k]; exists && reflect.DeepEqual(old, v) {
			continue
		}
		doc[k] = v
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *Repository) collect(match func(bson.M) bool) ([]lesson.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lesson.Document, 0, len(r.order))
	for _, id := range r.order {
		doc := r.docs[id]
		if match(doc) {
			out = append(out, lesson.NewDocument(doc))
		}
	}
	return out, nil
}

func toDoc(l lesson.Lesson) (bson.M, error) {
	raw, err := bson.Marshal(l)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
