package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

func newTriviaService(t *testing.T) (*TriviaService, *MockTriviaRepository, *MockNotifier) {
	t.Helper()
	repo := new(MockTriviaRepository)
	notifier := new(MockNotifier)
	log, _ := newTestLogger()
	return NewTriviaService(repo, notifier, log), repo, notifier
}

func TestCreateTrivia_DropsInactiveIDsAndNotifies(t *testing.T) {
	svc, repo, notifier := newTriviaService(t)
	players := []entity.User{{ID: 2, Email: "ana@talana.com"}, {ID: 3, Email: "beto@talana.com"}}

	repo.On("ActiveQuestionIDs", mock.Anything, []uint{1, 2, 9}).Return([]uint{1, 2}, nil)
	repo.On("ActiveUsers", mock.Anything, []uint{2, 3, 8}).Return(players, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Trivia"), []uint{1, 2}, []uint{2, 3}).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Trivia).ID = 5 }).
		Return(nil)
	stored := &entity.Trivia{ID: 5, Name: "Mix", IsActive: true, Assignments: []entity.TriviaAssignment{
		{ID: 1, UserID: 2, TriviaID: 5, Status: entity.AssignmentPending},
		{ID: 2, UserID: 3, TriviaID: 5, Status: entity.AssignmentPending},
	}}
	repo.On("GetByID", mock.Anything, uint(5)).Return(stored, nil)
	notifier.On("NotifyAssigned", mock.Anything, stored, players).Return(nil)

	trivia, err := svc.CreateTrivia(context.Background(), TriviaInput{
		Name:        "  Mix ",
		QuestionIDs: []uint{1, 2, 2, 9},
		UserIDs:     []uint{2, 3, 3, 8},
	})
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, uint(5), trivia.ID)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateTrivia_NotificationFailureDoesNotFailCreation(t *testing.T) {
	svc, repo, notifier := newTriviaService(t)
	players := []entity.User{{ID: 2}}
	repo.On("ActiveQuestionIDs", mock.Anything, []uint{1}).Return([]uint{1}, nil)
	repo.On("ActiveUsers", mock.Anything, []uint{2}).Return(players, nil)
	repo.On("Create", mock.Anything, mock.Anything, []uint{1}, []uint{2}).Return(nil)
	repo.On("GetByID", mock.Anything, uint(0)).
		Return(&entity.Trivia{Name: "T", Assignments: []entity.TriviaAssignment{{UserID: 2}}}, nil)
	notifier.On("NotifyAssigned", mock.Anything, mock.Anything, players).Return(errors.New("smtp down"))

	_, err := svc.CreateTrivia(context.Background(), TriviaInput{Name: "T", QuestionIDs: []uint{1}, UserIDs: []uint{2}})
	svc.Wait()

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCreateTrivia_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  TriviaInput
		setup  func(repo *MockTriviaRepository)
		errMsg string
	}{
		{
			name:   "empty name",
			input:  TriviaInput{Name: " ", QuestionIDs: []uint{1}, UserIDs: []uint{2}},
			errMsg: "name",
		},
		{
			name:   "no questions",
			input:  TriviaInput{Name: "T", UserIDs: []uint{2}},
			errMsg: "question",
		},
		{
			name:   "no users",
			input:  TriviaInput{Name: "T", QuestionIDs: []uint{1}},
			errMsg: "user",
		},
		{
			name:  "all questions inactive",
			input: TriviaInput{Name: "T", QuestionIDs: []uint{7}, UserIDs: []uint{2}},
			setup: func(repo *MockTriviaRepository) {
				repo.On("ActiveQuestionIDs", mock.Anything, []uint{7}).Return([]uint{}, nil)
			},
			errMsg: "questions is active",
		},
		{
			name:  "all users inactive",
			input: TriviaInput{Name: "T", QuestionIDs: []uint{1}, UserIDs: []uint{8}},
			setup: func(repo *MockTriviaRepository) {
				repo.On("ActiveQuestionIDs", mock.Anything, []uint{1}).Return([]uint{1}, nil)
				repo.On("ActiveUsers", mock.Anything, []uint{8}).Return([]entity.User{}, nil)
			},
			errMsg: "users is active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTriviaService(t)
			if tt.setup != nil {
				tt.setup(repo)
			}

			_, err := svc.CreateTrivia(context.Background(), tt.input)

			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateTrivia_ReplacesQuestions(t *testing.T) {
	svc, repo, _ := newTriviaService(t)
	current := &entity.Trivia{ID: 5, Name: "Old", IsActive: true}
	repo.On("GetByID", mock.Anything, uint(5)).Return(current, nil)
	repo.On("ActiveQuestionIDs", mock.Anything, []uint{4, 6}).Return([]uint{4}, nil)
	repo.On("Update", mock.Anything, current, []uint{4}).Return(nil)

	name := "New"
	updated, err := svc.UpdateTrivia(context.Background(), 5, entity.TriviaPatch{Name: &name, QuestionIDs: []uint{4, 6}})

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	repo.AssertExpectations(t)
}

func TestUpdateTrivia_NameOnlyKeepsQuestions(t *testing.T) {
	svc, repo, _ := newTriviaService(t)
	current := &entity.Trivia{ID: 5, Name: "Old"}
	repo.On("GetByID", mock.Anything, uint(5)).Return(current, nil)
	repo.On("Update", mock.Anything, current, []uint(nil)).Return(nil)

	desc := "weekly"
	_, err := svc.UpdateTrivia(context.Background(), 5, entity.TriviaPatch{Description: &desc})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "ActiveQuestionIDs", mock.Anything, mock.Anything)
}

func TestUpdateTrivia_EmptyQuestionListRejected(t *testing.T) {
	svc, repo, _ := newTriviaService(t)
	repo.On("GetByID", mock.Anything, uint(5)).Return(&entity.Trivia{ID: 5, Name: "T"}, nil)

	_, err := svc.UpdateTrivia(context.Background(), 5, entity.TriviaPatch{QuestionIDs: []uint{}})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteTrivia(t *testing.T) {
	svc, repo, _ := newTriviaService(t)
	repo.On("SoftDelete", mock.Anything, uint(5), mock.Anything).Return(int64(3), nil)
	repo.On("SoftDelete", mock.Anything, uint(6), mock.Anything).Return(int64(0), apperrors.ErrNotFound)

	require.NoError(t, svc.DeleteTrivia(context.Background(), 5))
	assert.ErrorIs(t, svc.DeleteTrivia(context.Background(), 6), apperrors.ErrNotFound)
}

func TestCreateTrivia_NotifiesOnlyUsersAssignedAfterLocking(t *testing.T) {
	svc, repo, notifier := newTriviaService(t)
	players := []entity.User{{ID: 2, Email: "ana@talana.com"}, {ID: 3, Email: "beto@talana.com"}}

	repo.On("ActiveQuestionIDs", mock.Anything, []uint{1}).Return([]uint{1}, nil)
	repo.On("ActiveUsers", mock.Anything, []uint{2, 3}).Return(players, nil)
	repo.On("Create", mock.Anything, mock.Anything, []uint{1}, []uint{2, 3}).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Trivia).ID = 7 }).
		Return(nil)
	// пользователь #3 удален между проверкой и блокировкой, назначение получил только #2
	stored := &entity.Trivia{ID: 7, Name: "Late", IsActive: true, Assignments: []entity.TriviaAssignment{
		{ID: 1, UserID: 2, TriviaID: 7, Status: entity.AssignmentPending},
	}}
	repo.On("GetByID", mock.Anything, uint(7)).Return(stored, nil)
	notifier.On("NotifyAssigned", mock.Anything, stored, players[:1]).Return(nil)

	_, err := svc.CreateTrivia(context.Background(), TriviaInput{Name: "Late", QuestionIDs: []uint{1}, UserIDs: []uint{2, 3}})
	svc.Wait()

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCreateTrivia_EverythingDeactivatedBeforeLocking(t *testing.T) {
	svc, repo, notifier := newTriviaService(t)
	repo.On("ActiveQuestionIDs", mock.Anything, []uint{1}).Return([]uint{1}, nil)
	repo.On("ActiveUsers", mock.Anything, []uint{2}).Return([]entity.User{{ID: 2}}, nil)
	repo.On("Create", mock.Anything, mock.Anything, []uint{1}, []uint{2}).
		Return(fmt.Errorf("%w: none of the given questions is active", apperrors.ErrValidation))

	_, err := svc.CreateTrivia(context.Background(), TriviaInput{Name: "Gone", QuestionIDs: []uint{1}, UserIDs: []uint{2}})
	svc.Wait()

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	notifier.AssertNotCalled(t, "NotifyAssigned", mock.Anything, mock.Anything, mock.Anything)
}
