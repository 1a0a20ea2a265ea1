package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ExportHandler downloads the booklet listing as CSV or XLSX.
type ExportHandler struct {
	Store *catalog.Store
	Log   log.FieldLogger
}

func NewExportHandler(store *catalog.Store, logger log.FieldLogger) *ExportHandler {
	return &ExportHandler{
		Store: store,
		Log:   logger,
	}
}

var exportHeaders = map[i18n.Lang][]string{
	i18n.EN: {"ID", "Title", "Subject", "Faculty", "Year", "Pages"},
	i18n.AR: {"المعرف", "العنوان", "الموضوع", "الكلية", "السنة", "الصفحات"},
}

func bookletRow(b catalog.Booklet) []string {
	return []string{b.ID, b.Title, b.Subject, b.Faculty, b.Year, strconv.Itoa(b.Pages)}
}

func (h *ExportHandler) load(c *gin.Context) (catalog.Settings, bool) {
	doc, err := h.Store.Load(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Error("load catalog for export")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, middleware.Lang(c).T(i18n.ServerError))
		return catalog.Settings{}, false
	}
	return doc, true
}

func exportName(ext string) string {
	return fmt.Sprintf("booklets_%s.%s", time.Now().Format("20060102"), ext)
}

// ExportCSV writes the booklets as UTF-8 CSV with a BOM so spreadsheet apps
// detect the encoding of Arabic titles.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportName("csv")))

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	writer.Write(exportHeaders[middleware.Lang(c)])
	for _, b := range doc.Booklets {
		writer.Write(bookletRow(b))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.Log.WithError(err).Warn("csv export interrupted")
	}
}

// ExportXLSX writes the booklets to a single-sheet workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Booklets"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		h.Log.WithError(err).Error("name sheet")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, middleware.Lang(c).T(i18n.ServerError))
		return
	}

	for i, head := range exportHeaders[middleware.Lang(c)] {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx, b := range doc.Booklets {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), b.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), b.Subject)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.Faculty)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.Year)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.Pages)
	}

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "C", 30)
	f.SetColWidth(sheetName, "D", "E", 15)
	f.SetColWidth(sheetName, "F", "F", 8)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportName("xlsx")))

	if err := f.Write(c.Writer); err != nil {
		h.Log.WithError(err).Warn("xlsx export interrupted")
	}
}
