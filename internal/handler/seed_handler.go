package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SeedHandler загружает демонстрационные данные (только при testing.enabled)
type SeedHandler struct {
	seeder Seeder
	log    logrus.FieldLogger
}

// NewSeedHandler создает обработчик загрузки демо-данных
func NewSeedHandler(seeder Seeder, log logrus.FieldLogger) *SeedHandler {
	return &SeedHandler{
		seeder: seeder,
		log:    log.WithField("component", "seed_handler"),
	}
}

// Seed идемпотентно загружает встроенный набор данных
// @Summary Загрузка демо-данных
// @Tags testing
// @Produce json
// @Success 201 {object} service.SeedResult
// @Router /testing/seed [post]
func (h *SeedHandler) Seed(c *gin.Context) {
	result, err := h.seeder.Seed(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
