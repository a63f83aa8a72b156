package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"quizroom/models"
)

// QuestionSource is an ordered set of questions, immutable after load and
// shared by all rooms.
type QuestionSource struct {
	questions []models.Question
}

// LoadQuestions reads a JSON array of questions from path. An empty path
// falls back to the built-in question set.
func LoadQuestions(path string) (*QuestionSource, error) {
	if path == "" {
		return &QuestionSource{questions: defaultQuestions}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions file: %w", err)
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	return &QuestionSource{questions: questions}, nil
}

func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return errors.New("no questions loaded")
	}

	for i, q := range questions {
		if q.Text == "" {
			return fmt.Errorf("question %d has empty text", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d needs at least 2 options", i)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %d has correct index %d out of range", i, q.Correct)
		}
	}

	return nil
}

func (qs *QuestionSource) Get(i int) models.Question {
	return qs.questions[i]
}

func (qs *QuestionSource) Count() int {
	return len(qs.questions)
}

var defaultQuestions = []models.Question{
	{Text: "What is the capital of France?", Options: []string{"London", "Paris", "Berlin", "Madrid"}, Correct: 1},
	{Text: "How many planets are in the Solar System?", Options: []string{"7", "8", "9", "10"}, Correct: 1},
	{Text: "Who wrote 'War and Peace'?", Options: []string{"Dostoevsky", "Tolstoy", "Chekhov", "Pushkin"}, Correct: 1},
	{Text: "Which element has the symbol 'O'?", Options: []string{"Gold", "Oxygen", "Osmium", "Tin"}, Correct: 1},
	{Text: "In what year was the October Revolution?", Options: []string{"1905", "1914", "1917", "1922"}, Correct: 2},
	{Text: "What is the largest planet in the Solar System?", Options: []string{"Earth", "Saturn", "Jupiter", "Uranus"}, Correct: 2},
	{Text: "How many continents are there on Earth?", Options: []string{"5", "6", "7", "8"}, Correct: 2},
	{Text: "Which ocean is the largest?", Options: []string{"Atlantic", "Indian", "Pacific", "Arctic"}, Correct: 2},
	{Text: "Who invented the light bulb?", Options: []string{"Nikola Tesla", "Thomas Edison", "Alexander Bell", "Benjamin Franklin"}, Correct: 1},
	{Text: "Which country gifted the Statue of Liberty to the USA?", Options: []string{"England", "Germany", "France", "Spain"}, Correct: 2},
	{Text: "How many days are in a leap year?", Options: []string{"365", "366", "364", "367"}, Correct: 1},
	{Text: "Which gas is essential for breathing?", Options: []string{"Nitrogen", "Oxygen", "Carbon Dioxide", "Hydrogen"}, Correct: 1},
	{Text: "What is the longest river in the world?", Options: []string{"Nile", "Amazon", "Yangtze", "Mississippi"}, Correct: 0},
	{Text: "How many strings does a standard guitar have?", Options: []string{"4", "5", "6", "7"}, Correct: 2},
	{Text: "What is the highest mountain in the world?", Options: []string{"K2", "Everest", "Kangchenjunga", "Kilimanjaro"}, Correct: 1},
	{Text: "In what year did World War II begin?", Options: []string{"1937", "1939", "1941", "1945"}, Correct: 1},
	{Text: "What is the lightest metal?", Options: []string{"Aluminum", "Lithium", "Magnesium", "Titanium"}, Correct: 1},
	{Text: "How many colors are in a rainbow?", Options: []string{"5", "6", "7", "8"}, Correct: 2},
	{Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, Correct: 1},
	{Text: "How many bones are in the adult human body?", Options: []string{"186", "206", "226", "246"}, Correct: 1},
}
