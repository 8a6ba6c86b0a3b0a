package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	i, ok := ParseIntent(" delete_email ")
	assert.True(t, ok)
	assert.Equal(t, IntentDeleteEmail, i)

	i, ok = ParseIntent("ORDER_PIZZA")
	assert.False(t, ok)
	assert.Equal(t, IntentGeneralQuery, i)
}

func TestClassificationParameters(t *testing.T) {
	c := IntentClassification{Parameters: map[string]interface{}{
		"sender":           " John ",
		"reference_number": float64(2),
		"reply_number":     "3",
		"subject_keyword":  42,
	}}

	assert.Equal(t, "John", c.Sender())
	assert.Equal(t, 2, c.ReferenceNumber())
	assert.Equal(t, 3, c.ReplyNumber())
	assert.Empty(t, c.SubjectKeyword())

	var empty IntentClassification
	assert.Zero(t, empty.ReferenceNumber())
	assert.Empty(t, empty.Sender())
}

func TestClassificationResultOr(t *testing.T) {
	got := ClassificationResult{Classification: &IntentClassification{Intent: IntentGreeting, Confidence: 0.9}}
	assert.Equal(t, IntentGreeting, got.Or(FallbackClassification()).Intent)

	failed := ClassificationResult{Err: errors.New("timeout")}
	assert.Equal(t, FallbackClassification(), failed.Or(FallbackClassification()))
}

func TestLastMessages(t *testing.T) {
	msgs := []ChatMessage{{Content: "1"}, {Content: "2"}, {Content: "3"}}
	assert.Len(t, LastMessages(msgs, 5), 3)
	assert.Equal(t, []ChatMessage{{Content: "2"}, {Content: "3"}}, LastMessages(msgs, 2))
}
