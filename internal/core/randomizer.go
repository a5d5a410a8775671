package core

import (
	"math/rand"

	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

// ShuffleAnswers returns a copy of the quiz with each question's options
// uniformly permuted and the correct index remapped to follow its option.
// The correct answer's text is preserved exactly; only its position moves.
// An out-of-range correct index is clamped before shuffling so the remapped
// index is always valid.
func ShuffleAnswers(rnd *rand.Rand, quiz *entity.QuizPayload) *entity.QuizPayload {
	out := &entity.QuizPayload{
		Title:     quiz.Title,
		Summary:   quiz.Summary,
		Questions: make([]entity.QuizQuestion, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		out.Questions[i] = shuffleQuestion(rnd, q)
	}
	return out
}

func shuffleQuestion(rnd *rand.Rand, q entity.QuizQuestion) entity.QuizQuestion {
	n := len(q.Options)
	if n == 0 {
		return q
	}
	correct := q.CorrectIndex
	if correct < 0 {
		correct = 0
	}
	if correct >= n {
		correct = n - 1
	}

	// perm[newPos] = oldPos; every permutation of n options is equally likely.
	perm := rnd.Perm(n)
	options := make([]string, n)
	newCorrect := 0
	for newPos, oldPos := range perm {
		options[newPos] = q.Options[oldPos]
		if oldPos == correct {
			newCorrect = newPos
		}
	}

	q.Options = options
	q.CorrectIndex = newCorrect
	return q
}
