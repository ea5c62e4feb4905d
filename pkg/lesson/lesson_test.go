package lesson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw     string
		text    string
		numeric bool
		number  float64
	}{
		{raw: "", text: ""},
		{raw: "   ", text: ""},
		{raw: " Math ", text: "Math"},
		{raw: "10", text: "10", numeric: true, number: 10},
		{raw: " 12.5 ", text: "12.5", numeric: true, number: 12.5},
		{raw: "-3", text: "-3", numeric: true, number: -3},
		{raw: "NaN", text: "NaN"},
		{raw: "Inf", text: "Inf"},
		{raw: "10 am", text: "10 am"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := ParseQuery(tt.raw)
			assert.Equal(t, tt.text, q.Text)
			if !tt.numeric {
				assert.Nil(t, q.Number)
				return
			}
			require.NotNil(t, q.Number)
			assert.Equal(t, tt.number, *q.Number)
		})
	}
}

func TestQueryEscapesMetacharacters(t *testing.T) {
	q := ParseQuery("C++ (adv")
	assert.Equal(t, `C\+\+ \(adv`, q.Pattern())

	re, err := q.Compile()
	require.NoError(t, err)
	assert.True(t, re.MatchString("intro to c++ (advanced)"))
	assert.False(t, re.MatchString("C"))
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	re, err := ParseQuery("").Compile()
	require.NoError(t, err)
	assert.True(t, re.MatchString(""))
	assert.True(t, re.MatchString("History"))
}

func TestParseID(t *testing.T) {
	oid, err := ParseID("65f1c2a4b7e8d9f0a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, "65f1c2a4b7e8d9f0a1b2c3d4", oid.Hex())

	_, err = ParseID("not-an-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestPatchFieldsDropsID(t *testing.T) {
	p := Patch{"_id": "x", "spaces": 4.0}
	assert.Equal(t, map[string]any{"spaces": 4.0}, p.Fields())
	assert.Empty(t, Patch{}.Fields())
}

func TestNewDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := map[string]any{"_id": oid, "subject": "Math", "spaces": "plenty", "teacher": "Ann"}

	doc := NewDocument(raw)

	assert.Equal(t, oid.Hex(), doc.ID())
	assert.Equal(t, "plenty", doc["spaces"])
	assert.Equal(t, "Ann", doc["teacher"])
	assert.Equal(t, oid, raw["_id"])

	assert.Empty(t, NewDocument(map[string]any{"subject": "Art"}).ID())
}
