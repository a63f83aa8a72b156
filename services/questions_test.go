package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQuestionsBuiltIn(t *testing.T) {
	questions, err := LoadQuestions("")
	require.NoError(t, err)

	assert.Equal(t, 20, questions.Count())

	first := questions.Get(0)
	assert.Equal(t, "What is the capital of France?", first.Text)
	assert.Equal(t, "Paris", first.Options[first.Correct])
}

func TestLoadQuestionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	data := `[
		{"question": "2+2?", "options": ["3", "4"], "correct": 1},
		{"question": "1+1?", "options": ["2", "3"], "correct": 0}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	questions, err := LoadQuestions(path)
	require.NoError(t, err)

	assert.Equal(t, 2, questions.Count())
	assert.Equal(t, "2+2?", questions.Get(0).Text)
	assert.Equal(t, 0, questions.Get(1).Correct)
}

func TestLoadQuestionsMissingFile(t *testing.T) {
	_, err := LoadQuestions(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadQuestionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"empty set", `[]`},
		{"empty text", `[{"question": "", "options": ["a", "b"], "correct": 0}]`},
		{"too few options", `[{"question": "q", "options": ["a"], "correct": 0}]`},
		{"correct out of range", `[{"question": "q", "options": ["a", "b"], "correct": 2}]`},
		{"correct negative", `[{"question": "q", "options": ["a", "b"], "correct": -1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "questions.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := LoadQuestions(path)
			assert.Error(t, err)
		})
	}
}
