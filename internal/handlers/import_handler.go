package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-quality-service/internal/events"
	"catalog-quality-service/internal/middleware"
	"catalog-quality-service/internal/models"
	"catalog-quality-service/internal/normalizer"
	"catalog-quality-service/internal/repository"
	"catalog-quality-service/internal/seo"
)

// ImportHandler runs uploaded CSV/XLSX product files through the
// normalization pipeline.
type ImportHandler struct {
	engine    *normalizer.Engine
	repo      *repository.QualityRepository
	publisher *events.Publisher
}

func NewImportHandler(engine *normalizer.Engine, repo *repository.QualityRepository, publisher *events.Publisher) *ImportHandler {
	return &ImportHandler{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
	}
}

// GetImportTemplate returns the import template definition or file
// @Summary Get import template
// @Description Returns the quality import template as JSON definition, CSV or XLSX download
// @Tags import
// @Produce json
// @Param format query string false "Template format: json, csv or xlsx" default(json)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/quality/import/template [get]
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.QualityImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=quality_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)

	// One sample row so the column semantics are visible in the file
	for _, sample := range template.SampleData {
		record := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			record[i] = sample[col.Name]
		}
		writer.Write(record)
	}
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	// Style for header row
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// Style for required columns
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	// Instructions sheet
	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Quality Import Instructions")

	f.SetCellValue("Instructions", "A3", "Every row is normalized: HTML is stripped from text, prices accept")
	f.SetCellValue("Instructions", "A4", "decimal commas and currency symbols, image URLs are validated, and")
	f.SetCellValue("Instructions", "A5", "each row gets a completeness score. Rows scoring below the minimum")
	f.SetCellValue("Instructions", "A6", "are stored as error_incomplete and need enrichment before publishing.")
	f.SetCellValue("Instructions", "A7", "Rows with identical title, price and description are treated as duplicates.")

	f.SetCellValue("Instructions", "A9", "Column Definitions:")
	f.SetCellValue("Instructions", "A10", "Column")
	f.SetCellValue("Instructions", "B10", "Description")
	f.SetCellValue("Instructions", "C10", "Required")
	f.SetCellValue("Instructions", "D10", "Type")
	f.SetCellValue("Instructions", "E10", "Example")

	for i, col := range template.Columns {
		row := i + 11
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 15)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=quality_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportProducts normalizes products from an uploaded CSV or Excel file
// @Summary Import and normalize a product file
// @Description Parses the file, normalizes every row, optionally scores SEO and persists the results
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param validateOnly formData bool false "Normalize and report without persisting"
// @Param scoreSeo formData bool false "Attach an SEO report per normalized row"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quality/import [post]
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	startTime := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"
	scoreSeo := c.DefaultPostForm("scoreSeo", "false") == "true"

	filename := strings.ToLower(header.Filename)
	var rows []map[string]string
	var parseErr error
	switch {
	case strings.HasSuffix(filename, ".csv"):
		rows, parseErr = h.parseCSV(file)
	case strings.HasSuffix(filename, ".xlsx"):
		rows, parseErr = h.parseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: parseErr.Error(),
			},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}

	report := h.processImport(tenantID, rows, validateOnly, scoreSeo)
	report.ProcessingMs = time.Since(startTime).Milliseconds()

	h.publisher.PublishImportCompleted(tenantID, report)

	c.JSON(http.StatusOK, report)
}

// processImport runs the parsed rows through the normalization engine
// and optionally persists the surviving products.
func (h *ImportHandler) processImport(tenantID string, rows []map[string]string, validateOnly, scoreSeo bool) *models.ImportReport {
	inputs := make([]interface{}, len(rows))
	for i, row := range rows {
		inputs[i] = rowToRawProduct(row)
	}

	result := h.engine.NormalizeBatch(inputs)
	middleware.CountNormalized(result.Stats.Success, result.Stats.Failed, result.Stats.Duplicates)

	report := &models.ImportReport{
		TotalRows:       len(rows),
		NormalizedCount: result.Stats.Success,
		FailedCount:     result.Stats.Failed,
		DuplicateCount:  result.Stats.Duplicates,
		AvgCompleteness: result.Stats.AvgCompleteness,
		ValidateOnly:    validateOnly,
		Duplicates:      result.Duplicates,
		Products:        result.Products,
	}

	// Map batch indices back to file row numbers for error reporting
	for _, e := range result.Errors {
		rowNum := e.Index + 2
		if n, err := strconv.Atoi(rows[e.Index]["_row"]); err == nil {
			rowNum = n
		}
		report.Errors = append(report.Errors, models.ImportRowError{
			Row:     rowNum,
			Code:    "NORMALIZATION_FAILED",
			Message: e.Error,
		})
	}

	if scoreSeo {
		report.SeoReports = make([]*models.SeoScoreReport, len(result.Products))
		for i, p := range result.Products {
			report.SeoReports[i] = seo.Score(seoInput(p))
		}
	}

	if h.repo != nil && !validateOnly {
		for i, p := range result.Products {
			record := models.NewProductRecord(tenantID, p)
			if scoreSeo {
				record.AttachSeoReport(report.SeoReports[i])
			}
			if err := h.repo.UpsertRecord(tenantID, record); err != nil {
				report.Errors = append(report.Errors, models.ImportRowError{
					Row:     0,
					Column:  "content_hash",
					Code:    "PERSIST_FAILED",
					Message: fmt.Sprintf("failed to store record %s: %v", p.ContentHash, err),
				})
				continue
			}
			report.PersistedCount++
			h.publisher.PublishProductNormalized(tenantID, record)
		}
	}

	report.Success = report.FailedCount == 0
	return report
}

// rowToRawProduct converts a parsed file row into the raw object shape
// the normalization engine accepts.
func rowToRawProduct(row map[string]string) map[string]interface{} {
	raw := make(map[string]interface{}, len(row))
	for key, value := range row {
		if key == "_row" || value == "" {
			continue
		}
		if key == "images" {
			urls := strings.Split(value, ",")
			images := make([]interface{}, 0, len(urls))
			for _, u := range urls {
				images = append(images, strings.TrimSpace(u))
			}
			raw[key] = images
			continue
		}
		raw[key] = value
	}
	return raw
}

// seoInput adapts a normalized product for the SEO rule audit.
func seoInput(p *models.NormalizedProduct) *models.SeoProduct {
	input := &models.SeoProduct{
		Title:       p.Title,
		Description: p.Description,
		Images:      p.Images,
		Tags:        p.Tags,
		Price:       p.Price,
	}
	if p.SeoTitle != nil {
		input.SeoTitle = *p.SeoTitle
	}
	if p.SeoDescription != nil {
		input.SeoDescription = *p.SeoDescription
	}
	if p.SKU != nil {
		input.SKU = *p.SKU
	}
	if p.Category != nil {
		input.Category = *p.Category
	}
	if p.URLSlug != nil {
		input.URLSlug = *p.URLSlug
	}
	return input
}

// parseCSV parses a CSV file into rows
func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Normalize headers
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1) // Track row number for error reporting
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into rows
func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	// Prefer "Products" sheet if it exists
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2) // Track row number (1-indexed, +1 for header)
		rows = append(rows, row)
	}

	return rows, nil
}
