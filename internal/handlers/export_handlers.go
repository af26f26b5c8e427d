package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/models"
)

// exportLimit caps the rows written to one workbook.
const exportLimit = 10000

const historySheet = "Histórico"

// ExportHistory streams the generation history as an .xlsx workbook.
// GET /admin/history/export
func (h *Handlers) ExportHistory(c *gin.Context) {
	records, _, err := h.Store.Generations.ListAll(c.Request.Context(), exportLimit, 0)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	f, err := historyWorkbook(records)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("historico_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		h.Log.Error(c.Request.Context(), "failed to write history workbook", "error", err)
	}
}

func historyWorkbook(records []models.GenerationRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}

	// 1. Header row
	headers := []string{"ID", "Tipo", "Criado em (UTC)", "Usuário", "Sessão", "Resumo"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, title)
	}
	styleHeader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(historySheet, "A1", "F1", styleHeader)

	// 2. One row per record
	for i, rec := range records {
		row := i + 2
		user := ""
		if rec.UserID != nil {
			user = strconv.FormatInt(*rec.UserID, 10)
		}
		values := []any{rec.ID, string(rec.Kind), rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"), user, rec.Session, summarize(rec)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}
	}

	_ = f.SetColWidth(historySheet, "A", "B", 10)
	_ = f.SetColWidth(historySheet, "C", "C", 20)
	_ = f.SetColWidth(historySheet, "D", "E", 16)
	_ = f.SetColWidth(historySheet, "F", "F", 60)
	return f, nil
}

// summarize describes a record in one line for the export.
func summarize(rec models.GenerationRecord) string {
	switch rec.Kind {
	case models.KindIdeas:
		var p models.IdeasPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return ""
		}
		return fmt.Sprintf("%s / %s (%d ideias)", p.Niche, p.Audience, len(p.Ideas))
	case models.KindScript:
		var p models.ScriptPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return ""
		}
		return p.Idea
	default:
		return ""
	}
}
