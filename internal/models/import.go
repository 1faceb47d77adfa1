package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportRequest represents import configuration
type ImportRequest struct {
	ValidateOnly bool `json:"validateOnly"` // dry run: normalize and report, skip persistence
	ScoreSeo     bool `json:"scoreSeo"`     // attach an SEO report per normalized row
}

// ImportReport is the result of a quality import run: every row is
// normalized, rows that fail normalization surface as per-row errors,
// duplicates are collapsed by content hash.
type ImportReport struct {
	Success         bool                 `json:"success"`
	TotalRows       int                  `json:"totalRows"`
	NormalizedCount int                  `json:"normalizedCount"`
	FailedCount     int                  `json:"failedCount"`
	DuplicateCount  int                  `json:"duplicateCount"`
	PersistedCount  int                  `json:"persistedCount"`
	AvgCompleteness int                  `json:"avgCompleteness"`
	ValidateOnly    bool                 `json:"validateOnly"`
	Errors          []ImportRowError     `json:"errors,omitempty"`
	Duplicates      []DuplicateRef       `json:"duplicates,omitempty"`
	Products        []*NormalizedProduct `json:"products"`
	SeoReports      []*SeoScoreReport    `json:"seoReports,omitempty"`
	ProcessingMs    int64                `json:"processingMs"`
}

// QualityImportColumns returns the column definitions for product quality import
func QualityImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "title", Description: "Product title (or use name)", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "description", Description: "Product description, HTML allowed", Required: false, Type: "string", Example: "<p>Soft organic cotton.</p>"},
		{Name: "price", Description: "Price; decimal comma and currency symbols accepted", Required: false, Type: "number", Example: "29,99"},
		{Name: "sku", Description: "Product SKU", Required: false, Type: "string", Example: "TSH-BLU-001"},
		{Name: "category", Description: "Category name", Required: false, Type: "string", Example: "Apparel"},
		{Name: "tags", Description: "Comma-separated tags", Required: false, Type: "string", Example: "cotton,t-shirt,summer"},
		{Name: "seo_title", Description: "Meta title", Required: false, Type: "string", Example: "Blue Cotton T-Shirt | Demo Store"},
		{Name: "seo_description", Description: "Meta description", Required: false, Type: "string", Example: "Soft organic cotton t-shirt in classic blue."},
		{Name: "images", Description: "Comma-separated image URLs", Required: false, Type: "string", Example: "https://cdn.example.com/tsh-blu-1.jpg"},
		{Name: "source_url", Description: "Source product page URL", Required: false, Type: "string", Example: "https://supplier.example.com/p/123"},
	}
}

// QualityImportTemplate returns the template definition for quality imports
func QualityImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: QualityImportColumns(),
		SampleData: []map[string]string{
			{
				"title":       "Blue Cotton T-Shirt",
				"description": "<p>Soft organic cotton in classic blue. Pre-shrunk, machine washable, available in all sizes.</p>",
				"price":       "29,99",
				"sku":         "TSH-BLU-001",
				"category":    "Apparel",
				"tags":        "cotton,t-shirt,summer",
				"images":      "https://cdn.example.com/tsh-blu-1.jpg,https://cdn.example.com/tsh-blu-2.jpg",
			},
		},
	}
}
