package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
	"github.com/yourusername/talatrivia-api/internal/service"
)

func sampleQuestion() *entity.Question {
	return &entity.Question{
		ID:         3,
		Text:       "Capital of Chile?",
		Difficulty: entity.DifficultyEasy,
		Options: []entity.Option{
			{ID: 10, QuestionID: 3, Text: "Santiago", IsCorrect: true},
			{ID: 11, QuestionID: 3, Text: "Lima"},
		},
		IsActive: true,
	}
}

func TestCreateQuestion(t *testing.T) {
	body := `{"text":"Capital of Chile?","difficulty":"easy","options":[{"text":"Santiago","is_correct":true},{"text":"Lima"}]}`

	t.Run("created with admin view of options", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("CreateQuestion", mock.Anything, service.QuestionInput{
			Text:       "Capital of Chile?",
			Difficulty: entity.DifficultyEasy,
			Options:    []entity.Option{{Text: "Santiago", IsCorrect: true}, {Text: "Lima"}},
		}).Return(sampleQuestion(), nil)

		w := doRequest(api.router, http.MethodPost, "/api/questions", body, "Authorization", "Bearer admin-token")

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"is_correct":true`)
	})

	t.Run("two correct options", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("CreateQuestion", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: exactly one option must be correct, got 2", apperrors.ErrValidation))

		code, resp := api.do(http.MethodPost, "/api/questions", body, "admin-token")

		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, resp["error"], "exactly one option")
	})

	t.Run("duplicate text", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("CreateQuestion", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: question already exists", apperrors.ErrConflict))

		code, _ := api.do(http.MethodPost, "/api/questions", body, "admin-token")
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("options missing", func(t *testing.T) {
		api := newAPI(t, false)
		code, _ := api.do(http.MethodPost, "/api/questions", `{"text":"Q","difficulty":"easy"}`, "admin-token")
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestUpdateQuestion_PatchSemantics(t *testing.T) {
	t.Run("text only keeps options", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("UpdateQuestion", mock.Anything, uint(3), mock.MatchedBy(func(p entity.QuestionPatch) bool {
			return p.Text != nil && *p.Text == "New text" && p.Difficulty == nil && !p.ReplacesOptions()
		})).Return(sampleQuestion(), nil)

		code, _ := api.do(http.MethodPut, "/api/questions/3", `{"text":"New text"}`, "admin-token")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("options replace the set", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("UpdateQuestion", mock.Anything, uint(3), mock.MatchedBy(func(p entity.QuestionPatch) bool {
			return p.ReplacesOptions() && len(p.Options) == 2 && p.Options[1].IsCorrect
		})).Return(sampleQuestion(), nil)

		code, _ := api.do(http.MethodPut, "/api/questions/3", `{"options":[{"text":"A"},{"text":"B","is_correct":true}]}`, "admin-token")
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestQuestionReadAndDelete(t *testing.T) {
	t.Run("get missing", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("GetQuestion", mock.Anything, uint(99)).
			Return(nil, fmt.Errorf("%w: question #99 not found", apperrors.ErrNotFound))

		code, _ := api.do(http.MethodGet, "/api/questions/99", "", "admin-token")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("list", func(t *testing.T) {
		api := newAPI(t, false)
		p := service.NewPagination(1, 10)
		api.questions.On("ListQuestions", mock.Anything, p).
			Return(service.NewPage([]entity.Question{*sampleQuestion()}, 1, p), nil)

		code, body := api.do(http.MethodGet, "/api/questions", "", "admin-token")
		require.Equal(t, http.StatusOK, code)
		assert.EqualValues(t, 1, body["total_pages"])
	})

	t.Run("delete in use", func(t *testing.T) {
		api := newAPI(t, false)
		api.questions.On("DeleteQuestion", mock.Anything, uint(3)).
			Return(fmt.Errorf("%w: question #3 is used by an active trivia with pending assignments", apperrors.ErrConflict))

		code, _ := api.do(http.MethodDelete, "/api/questions/3", "", "admin-token")
		assert.Equal(t, http.StatusConflict, code)
	})
}

func TestTriviaEndpoints(t *testing.T) {
	trivia := &entity.Trivia{
		ID:        4,
		Name:      "Geography",
		Questions: []entity.Question{*sampleQuestion()},
		Assignments: []entity.TriviaAssignment{
			{ID: 7, UserID: 2, TriviaID: 4, Status: entity.AssignmentPending},
		},
		IsActive: true,
	}

	t.Run("create", func(t *testing.T) {
		api := newAPI(t, false)
		api.trivias.On("CreateTrivia", mock.Anything, service.TriviaInput{
			Name:        "Geography",
			QuestionIDs: []uint{3},
			UserIDs:     []uint{2, 99},
		}).Return(trivia, nil)

		code, body := api.do(http.MethodPost, "/api/trivias", `{"name":"Geography","question_ids":[3],"user_ids":[2,99]}`, "admin-token")

		require.Equal(t, http.StatusCreated, code)
		assert.EqualValues(t, 1, body["question_count"])
		assert.Len(t, body["assignments"], 1)
	})

	t.Run("create without resolvable questions", func(t *testing.T) {
		api := newAPI(t, false)
		api.trivias.On("CreateTrivia", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: none of the question ids refer to active questions", apperrors.ErrValidation))

		code, _ := api.do(http.MethodPost, "/api/trivias", `{"name":"X","question_ids":[50],"user_ids":[2]}`, "admin-token")
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})

	t.Run("update name only", func(t *testing.T) {
		api := newAPI(t, false)
		api.trivias.On("UpdateTrivia", mock.Anything, uint(4), mock.MatchedBy(func(p entity.TriviaPatch) bool {
			return p.Name != nil && *p.Name == "Geo" && !p.ReplacesQuestions()
		})).Return(trivia, nil)

		code, _ := api.do(http.MethodPut, "/api/trivias/4", `{"name":"Geo"}`, "admin-token")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("delete", func(t *testing.T) {
		api := newAPI(t, false)
		api.trivias.On("DeleteTrivia", mock.Anything, uint(4)).Return(nil)

		code, body := api.do(http.MethodDelete, "/api/trivias/4", "", "admin-token")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Trivia deleted successfully", body["message"])
	})
}
