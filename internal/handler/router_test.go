package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/talatrivia-api/internal/middleware"
	"github.com/yourusername/talatrivia-api/internal/service"
)

type apiFixture struct {
	router    *gin.Engine
	auth      *MockAuthService
	users     *MockUserService
	questions *MockQuestionService
	trivias   *MockTriviaService
	game      *MockGameService
	ranking   *MockRankingService
	seeder    *MockSeeder
}

func newAPI(t *testing.T, withSeed bool) *apiFixture {
	t.Helper()
	log := nullLogger()
	f := &apiFixture{
		router:    gin.New(),
		auth:      new(MockAuthService),
		users:     new(MockUserService),
		questions: new(MockQuestionService),
		trivias:   new(MockTriviaService),
		game:      new(MockGameService),
		ranking:   new(MockRankingService),
		seeder:    new(MockSeeder),
	}
	rt := &Router{
		Auth:           NewAuthHandler(f.auth, CookieOptions{Name: "access_token"}, log),
		Users:          NewUserHandler(f.users, log),
		Questions:      NewQuestionHandler(f.questions, log),
		Trivias:        NewTriviaHandler(f.trivias, log),
		Game:           NewGameHandler(f.game, log),
		Ranking:        NewRankingHandler(f.ranking, log),
		Health:         NewHealthHandler(),
		AuthMiddleware: middleware.NewAuthMiddleware(testAuthenticator(), "access_token", log),
		Limiter:        middleware.NewRateLimiter(nil, false, log),
	}
	if withSeed {
		rt.Seed = NewSeedHandler(f.seeder, log)
	}
	rt.Register(f.router)
	t.Cleanup(func() {
		f.auth.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.questions.AssertExpectations(t)
		f.trivias.AssertExpectations(t)
		f.game.AssertExpectations(t)
		f.ranking.AssertExpectations(t)
		f.seeder.AssertExpectations(t)
	})
	return f
}

func (f *apiFixture) do(method, path, body, token string) (int, map[string]interface{}) {
	var headers []string
	if token != "" {
		headers = []string{"Authorization", "Bearer " + token}
	}
	w := doRequest(f.router, method, path, body, headers...)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestRouter_HealthRoot(t *testing.T) {
	api := newAPI(t, false)

	code, body := api.do(http.MethodGet, "/", "", "")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "TalaTrivia API is running!", body["message"])
}

func TestRouter_AccessControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"questions need auth", http.MethodGet, "/api/questions", "", http.StatusUnauthorized},
		{"questions are admin only", http.MethodGet, "/api/questions", "player-token", http.StatusForbidden},
		{"trivias are admin only", http.MethodPost, "/api/trivias", "player-token", http.StatusForbidden},
		{"user list is admin only", http.MethodGet, "/api/users", "player-token", http.StatusForbidden},
		{"user delete is admin only", http.MethodDelete, "/api/users/2", "player-token", http.StatusForbidden},
		{"ranking export is admin only", http.MethodGet, "/api/ranking/export", "player-token", http.StatusForbidden},
		{"player stats of others are admin only", http.MethodGet, "/api/ranking/users/3", "player-token", http.StatusForbidden},
		{"game needs auth", http.MethodGet, "/api/game/my-trivias", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/game/my-trivias", "forged", http.StatusUnauthorized},
		{"invalid id", http.MethodGet, "/api/questions/abc", "admin-token", http.StatusBadRequest},
		{"zero id", http.MethodGet, "/api/game/0/play", "player-token", http.StatusBadRequest},
		{"seed disabled", http.MethodPost, "/api/testing/seed", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t, false)
			code, _ := api.do(tt.method, tt.path, "", tt.token)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRouter_SeedEnabled(t *testing.T) {
	api := newAPI(t, true)
	api.seeder.On("Seed", mock.Anything).
		Return(&service.SeedResult{Message: "Seed completed", UsersCreated: 3, QuestionsCreated: 9, TriviasCreated: 2}, nil)

	code, body := api.do(http.MethodPost, "/api/testing/seed", "", "")

	require.Equal(t, http.StatusCreated, code)
	assert.EqualValues(t, 9, body["questions_created"])
}
