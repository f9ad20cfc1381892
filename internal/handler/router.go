package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/talatrivia-api/internal/middleware"
)

// RateLimits лимиты запросов в минуту по группам маршрутов
type RateLimits struct {
	LoginPerMin   int
	GeneralPerMin int
	HealthPerMin  int
}

// Router содержит обработчики и middleware, из которых собираются маршруты.
// Seed == nil отключает тестовый маршрут загрузки данных.
type Router struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Questions *QuestionHandler
	Trivias   *TriviaHandler
	Game      *GameHandler
	Ranking   *RankingHandler
	WS        *WSHandler
	Health    *HealthHandler
	Seed      *SeedHandler

	AuthMiddleware *middleware.AuthMiddleware
	Limiter        *middleware.RateLimiter
	Limits         RateLimits
}

// Register регистрирует маршруты API в движке gin
func (rt *Router) Register(r *gin.Engine) {
	healthLimit := rt.Limiter.Limit(middleware.PerMinute("rate_limit:health", rt.Limits.HealthPerMin))
	r.GET("/", healthLimit, rt.Health.Root)
	r.GET("/health", healthLimit, rt.Health.Detailed)

	api := r.Group("/api")
	api.Use(rt.Limiter.LimitByIP(middleware.PerMinute("rate_limit:general", rt.Limits.GeneralPerMin)))

	auth := rt.AuthMiddleware.RequireAuth()
	admin := []gin.HandlerFunc{auth, rt.AuthMiddleware.AdminOnly()}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", rt.Limiter.Limit(middleware.PerMinute("rate_limit:login", rt.Limits.LoginPerMin)), rt.Auth.Login)
		authGroup.POST("/logout", rt.Auth.Logout)
		authGroup.GET("/me", auth, rt.Auth.Me)
	}

	users := api.Group("/users")
	{
		userID := middleware.ExtractUintParam("id", UserIDKey)
		users.POST("/signup", rt.Users.Signup)
		users.GET("", append(admin, rt.Users.ListUsers)...)
		users.POST("", append(admin, rt.Users.CreateUser)...)
		users.GET("/deleted", append(admin, rt.Users.ListDeletedUsers)...)
		users.GET("/:id", auth, userID, rt.Users.GetUser)
		users.PUT("/:id", auth, userID, rt.Users.UpdateUser)
		users.DELETE("/:id", append(admin, userID, rt.Users.DeleteUser)...)
		users.PUT("/:id/restore", append(admin, userID, rt.Users.RestoreUser)...)
	}

	questions := api.Group("/questions", admin...)
	{
		questionID := middleware.ExtractUintParam("id", QuestionIDKey)
		questions.GET("", rt.Questions.ListQuestions)
		questions.POST("", rt.Questions.CreateQuestion)
		questions.GET("/:id", questionID, rt.Questions.GetQuestion)
		questions.PUT("/:id", questionID, rt.Questions.UpdateQuestion)
		questions.DELETE("/:id", questionID, rt.Questions.DeleteQuestion)
	}

	trivias := api.Group("/trivias", admin...)
	{
		triviaID := middleware.ExtractUintParam("id", TriviaIDKey)
		trivias.GET("", rt.Trivias.ListTrivias)
		trivias.POST("", rt.Trivias.CreateTrivia)
		trivias.GET("/:id", triviaID, rt.Trivias.GetTrivia)
		trivias.PUT("/:id", triviaID, rt.Trivias.UpdateTrivia)
		trivias.DELETE("/:id", triviaID, rt.Trivias.DeleteTrivia)
	}

	game := api.Group("/game", auth)
	{
		assignmentID := middleware.ExtractUintParam("id", AssignmentIDKey)
		game.GET("/my-trivias", rt.Game.MyTrivias)
		game.GET("/:id/play", assignmentID, rt.Game.Play)
		game.POST("/:id/submit", assignmentID, rt.Game.Submit)
	}

	ranking := api.Group("/ranking", auth)
	{
		ranking.GET("/global", rt.Ranking.GlobalRanking)
		ranking.GET("/my-stats", rt.Ranking.MyStats)
		ranking.GET("/users/:id", rt.AuthMiddleware.AdminOnly(), middleware.ExtractUintParam("id", UserIDKey), rt.Ranking.UserStats)
		ranking.GET("/export", rt.AuthMiddleware.AdminOnly(), rt.Ranking.ExportRanking)
		if rt.WS != nil {
			ranking.GET("/live", rt.WS.LiveRanking)
		}
	}

	if rt.Seed != nil {
		api.POST("/testing/seed", rt.Seed.Seed)
	}
}
