package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lessonhub/pkg/lesson"
	"lessonhub/pkg/mongodb/mongotest"
)

func TestSearchFilterText(t *testing.T) {
	got := SearchFilter(lesson.ParseQuery(" math. "))

	pattern := bson.M{"$regex": `math\.`, "$options": "i"}
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"subject": pattern},
		bson.M{"location": pattern},
	}}, got)
}

func TestSearchFilterNumeric(t *testing.T) {
	got := SearchFilter(lesson.ParseQuery("10"))

	pattern := bson.M{"$regex": "10", "$options": "i"}
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"subject": pattern},
		bson.M{"location": pattern},
		bson.M{"price": 10.0},
		bson.M{"spaces": 10.0},
	}}, got)
}

func subjects(lessons []lesson.Document) []string {
	out := make([]string, 0, len(lessons))
	for _, l := range lessons {
		s, _ := l["subject"].(string)
		out = append(out, s)
	}
	return out
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	_, db := mongotest.NewDatabase(t)
	repo := New(db)

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	n, err := repo.Insert(ctx, []lesson.Lesson{
		{Subject: "Math", Location: "London", Price: 10, Spaces: 5},
		{Subject: "History10", Location: "Bristol", Price: 5, Spaces: 2},
		{Subject: "Art", Location: "Hendon", Price: 7, Spaces: 3},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	t.Run("empty query returns everything", func(t *testing.T) {
		got, err := repo.Search(ctx, lesson.ParseQuery(""))
		require.NoError(t, err)
		assert.ElementsMatch(t, subjects(all), subjects(got))
	})

	t.Run("numeric query matches price and text", func(t *testing.T) {
		got, err := repo.Search(ctx, lesson.ParseQuery("10"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Math", "History10"}, subjects(got))
	})

	t.Run("metacharacters are literal", func(t *testing.T) {
		got, err := repo.Search(ctx, lesson.ParseQuery("(["))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("case insensitive location", func(t *testing.T) {
		got, err := repo.Search(ctx, lesson.ParseQuery("bRiStOl"))
		require.NoError(t, err)
		assert.Equal(t, []string{"History10"}, subjects(got))
	})

	var math lesson.Document
	for _, l := range all {
		if l["subject"] == "Math" {
			math = l
		}
	}
	require.Len(t, math.ID(), 24)

	t.Run("empty patch matches without modifying", func(t *testing.T) {
		res, err := repo.Update(ctx, math.ID(), lesson.Patch{})
		require.NoError(t, err)
		assert.Equal(t, lesson.UpdateResult{Acknowledged: true, MatchedCount: 1}, res)
	})

	t.Run("patch sets only supplied fields", func(t *testing.T) {
		res, err := repo.Update(ctx, math.ID(), lesson.Patch{"spaces": 4, "_id": "ignored"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
		assert.Equal(t, int64(1), res.ModifiedCount)

		got, err := repo.Search(ctx, lesson.ParseQuery("Math"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.EqualValues(t, 4, got[0]["spaces"])
		assert.Equal(t, "London", got[0]["location"])
		assert.Equal(t, 10.0, got[0]["price"])
		assert.Equal(t, math.ID(), got[0].ID())
	})

	t.Run("patch adds fields and changes types", func(t *testing.T) {
		res, err := repo.Update(ctx, math.ID(), lesson.Patch{
			"teacher": "Ann",
			"spaces":  "plenty",
			"price":   4.5,
			"tags":    map[string]any{"level": "beginner"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.ModifiedCount)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		var got lesson.Document
		for _, l := range all {
			if l.ID() == math.ID() {
				got = l
			}
		}
		require.NotNil(t, got)
		assert.Equal(t, "Ann", got["teacher"])
		assert.Equal(t, "plenty", got["spaces"])
		assert.Equal(t, 4.5, got["price"])
		assert.Equal(t, bson.M{"level": "beginner"}, got["tags"])

		found, err := repo.Search(ctx, lesson.ParseQuery("4.5"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Math"}, subjects(found))

		found, err = repo.Search(ctx, lesson.ParseQuery(""))
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("unknown id matches nothing", func(t *testing.T) {
		res, err := repo.Update(ctx, primitive.NewObjectID().Hex(), lesson.Patch{"spaces": 1})
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.MatchedCount)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := repo.Update(ctx, "123", lesson.Patch{"spaces": 1})
		assert.ErrorIs(t, err, lesson.ErrInvalidID)
	})
}
