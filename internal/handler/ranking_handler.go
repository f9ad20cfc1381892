package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/talatrivia-api/internal/middleware"
	"github.com/yourusername/talatrivia-api/internal/service"
)

// exportHeaders заголовки выгрузки рейтинга
var exportHeaders = []string{"Position", "User ID", "Player", "Total score", "Trivias played"}

// RankingHandler обрабатывает запросы рейтинга и статистики
type RankingHandler struct {
	rankingService RankingService
	log            logrus.FieldLogger
}

// NewRankingHandler создает новый обработчик рейтинга
func NewRankingHandler(rankingService RankingService, log logrus.FieldLogger) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
		log:            log.WithField("component", "ranking_handler"),
	}
}

// GlobalRanking возвращает топ игроков
// @Summary Глобальный рейтинг
// @Tags ranking
// @Produce json
// @Param limit query int false "Количество позиций (1..100)"
// @Success 200 {array} service.RankingEntry
// @Router /ranking/global [get]
func (h *RankingHandler) GlobalRanking(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}
	entries, err := h.rankingService.GlobalRanking(c.Request.Context(), limit)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// MyStats возвращает статистику текущего игрока
// @Summary Моя статистика
// @Tags ranking
// @Produce json
// @Success 200 {object} service.PlayerStats
// @Failure 404 {object} dto.ErrorResponse
// @Router /ranking/my-stats [get]
func (h *RankingHandler) MyStats(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondStats(c, user.ID)
}

// UserStats возвращает статистику произвольного игрока
func (h *RankingHandler) UserStats(c *gin.Context) {
	h.respondStats(c, middleware.UintParam(c, UserIDKey))
}

func (h *RankingHandler) respondStats(c *gin.Context, userID uint) {
	stats, err := h.rankingService.PlayerStats(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportRanking выгружает глобальный рейтинг в CSV или Excel
// GET /api/ranking/export?format=csv|xlsx&limit=
func (h *RankingHandler) ExportRanking(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.MaxPerPage)))
	if err != nil {
		limit = service.MaxPerPage
	}

	entries, err := h.rankingService.GlobalRanking(c.Request.Context(), limit)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("talatrivia_ranking_%s", time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		h.exportXLSX(c, entries, filename)
		return
	}
	h.exportCSV(c, entries, filename)
}

// exportCSV пишет рейтинг в CSV с BOM для корректного открытия в Excel
func (h *RankingHandler) exportCSV(c *gin.Context, entries []service.RankingEntry, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, e := range entries {
		_ = writer.Write([]string{
			strconv.Itoa(e.Position),
			strconv.FormatUint(uint64(e.UserID), 10),
			sanitizeForExcel(e.PlayerName),
			strconv.Itoa(e.TotalScore),
			strconv.Itoa(e.TriviasPlayed),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.WithError(err).Error("Failed to write CSV export")
	}
}

// exportXLSX пишет рейтинг в Excel через StreamWriter
func (h *RankingHandler) exportXLSX(c *gin.Context, entries []service.RankingEntry, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ranking"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		handleError(c, h.log, fmt.Errorf("failed to rename sheet: %w", err))
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		handleError(c, h.log, fmt.Errorf("failed to create stream writer: %w", err))
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, v := range exportHeaders {
		headers[i] = v
	}
	if err := sw.SetRow("A1", headers); err != nil {
		handleError(c, h.log, fmt.Errorf("failed to write headers: %w", err))
		return
	}

	for i, e := range entries {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{e.Position, e.UserID, sanitizeForExcel(e.PlayerName), e.TotalScore, e.TriviasPlayed}
		if err := sw.SetRow(cell, row); err != nil {
			handleError(c, h.log, fmt.Errorf("failed to write row %d: %w", i+2, err))
			return
		}
	}
	if err := sw.Flush(); err != nil {
		handleError(c, h.log, fmt.Errorf("failed to flush sheet: %w", err))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("Failed to write Excel export")
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
