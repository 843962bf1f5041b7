package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedback(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Feedback
		wantErr bool
	}{
		{"up", "up", FeedbackPositive, false},
		{"plus", "+", FeedbackPositive, false},
		{"thumb up", "👍", FeedbackPositive, false},
		{"positive", "positive", FeedbackPositive, false},
		{"down", "down", FeedbackNegative, false},
		{"minus", "-", FeedbackNegative, false},
		{"thumb down", "👎", FeedbackNegative, false},
		{"empty cannot clear", "", FeedbackNone, true},
		{"unknown", "meh", FeedbackNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFeedback(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryConstructors(t *testing.T) {
	assert.Equal(t, Entry{Kind: KindQuestion, Content: "hi"}, Question("hi"))
	assert.Equal(t, Entry{Kind: KindAnswer, Content: "hello"}, Answer("hello"))
	assert.Equal(t, Entry{Kind: KindImage, Content: "file:///tmp/x.webp"}, Image("file:///tmp/x.webp"))

	assert.True(t, Answer("x").IsAnswer())
	assert.False(t, Question("x").IsAnswer())
	assert.False(t, Image("x").IsAnswer())
}

func TestEntryJSONOmitsAnswerFieldsOnQuestions(t *testing.T) {
	data, err := json.Marshal(Question("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"question","content":"hi"}`, string(data))

	rated := Answer("ok")
	rated.Favorite = true
	rated.Feedback = FeedbackNegative
	data, err = json.Marshal(rated)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"answer","content":"ok","favorite":true,"feedback":"negative"}`, string(data))
}
