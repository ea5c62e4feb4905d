// Package mongostore persists lessons in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lessonhub/pkg/lesson"
)

// Collection is the name of the lessons collection.
const Collection = "lessons"

// Server error code for an invalid $regex.
const codeBadRegex = 51091

// Repository persists lessons in MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// New creates a MongoDB repository on db.
func New(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(Collection)}
}

// List fetches every lesson, unfiltered, in store order.
func (r *Repository) List(ctx context.Context) ([]lesson.Document, error) {
	return r.find(ctx, bson.M{})
}

// Search fetches lessons matching the query, see SearchFilter.
func (r *Repository) Search(ctx context.Context, q lesson.Query) ([]lesson.Document, error) {
	lessons, err := r.find(ctx, SearchFilter(q))
	if err != nil {
		var se mongo.ServerError
		if errors.As(err, &se) && se.HasErrorCode(codeBadRegex) {
			return nil, fmt.Errorf("%w: %v", lesson.ErrInvalidQuery, err)
		}
		return nil, err
	}
	return lessons, nil
}

// Update applies the patch with $set to the lesson with the given id. An
// empty patch only counts the match.
func (r *Repository) Update(ctx context.Context, id string, patch lesson.Patch) (lesson.UpdateResult, error) {
	oid, err := lesson.ParseID(id)
	if err != nil {
		return lesson.UpdateResult{}, err
	}
	filter := bson.M{"_id": oid}

	fields := patch.Fields()
	if len(fields) == 0 {
		n, err := r.coll.CountDocuments(ctx, filter)
		if err != nil {
			return lesson.UpdateResult{}, fmt.Errorf("count lesson: %w", err)
		}
		return lesson.UpdateResult{Acknowledged: true, MatchedCount: n}, nil
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return lesson.UpdateResult{}, fmt.Errorf("update lesson: %w", err)
	}

	return lesson.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Insert adds lessons and returns how many were stored.
func (r *Repository) Insert(ctx context.Context, lessons []lesson.Lesson) (int, error) {
	if len(lessons) == 0 {
		return 0, nil
	}
	docs := make([]any, len(lessons))
	for i, l := range lessons {
		docs[i] = l
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert lessons: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// SearchFilter builds the disjunction used by Search: a case-insensitive
// pattern on subject and location and, for numeric text, equality on price
// and spaces.
func SearchFilter(q lesson.Query) bson.M {
	pattern := bson.M{"$regex": q.Pattern(), "$options": "i"}
	or := bson.A{
		bson.M{"subject": pattern},
		bson.M{"location": pattern},
	}
	if q.Number != nil {
		or = append(or,
			bson.M{"price": *q.Number},
			bson.M{"spaces": *q.Number},
		)
	}
	return bson.M{"$or": or}
}

func (r *Repository) find(ctx context.Context, filter bson.M) ([]lesson.Document, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}

	lessons := make([]lesson.Document, 0, len(raw))
	for _, doc := range raw {
		lessons = append(lessons, lesson.NewDocument(doc))
	}
	return lessons, nil
}
