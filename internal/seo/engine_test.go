package seo

import (
	"strings"
	"testing"

	"catalog-quality-service/internal/models"
)

func fullyOptimizedProduct() *models.SeoProduct {
	return &models.SeoProduct{
		Title:          "Organic Cotton Crew Neck T-Shirt in Classic Blue",
		Description:    strings.Repeat("A detailed paragraph about fit, fabric and care instructions. ", 4),
		SeoTitle:       "Organic Cotton T-Shirt | Classic Blue | Demo Store",
		SeoDescription: "Soft organic cotton t-shirt in classic blue. Pre-shrunk, machine washable and available in all sizes from S to XXL.",
		Images: []models.ProductImage{
			{URL: "https://cdn.example.com/1.jpg", Alt: "Front view"},
			{URL: "https://cdn.example.com/2.jpg", Alt: "Back view"},
			{URL: "https://cdn.example.com/3.jpg", Alt: "Detail"},
		},
		Tags:     []string{"cotton", "t-shirt", "organic"},
		Price:    29.99,
		SKU:      "TSH-BLU-001",
		Category: "Apparel",
		URLSlug:  "organic-cotton-t-shirt-blue",
	}
}

func TestScoreFullyOptimized(t *testing.T) {
	report := Score(fullyOptimizedProduct())

	if report.OverallScore != 100 {
		t.Errorf("got score %d, want 100; issues: %+v", report.OverallScore, report.Issues)
	}
	if report.Grade != "A" {
		t.Errorf("got grade %s, want A", report.Grade)
	}
	if report.Status != models.SeoStatusOptimized {
		t.Errorf("got status %s, want optimized", report.Status)
	}
	if len(report.Issues) != 0 || len(report.Recommendations) != 0 {
		t.Errorf("expected no findings, got %d issues, %d recommendations", len(report.Issues), len(report.Recommendations))
	}
}

func TestScoreEmptyProduct(t *testing.T) {
	report := Score(&models.SeoProduct{})

	if report.OverallScore >= 20 {
		t.Errorf("got score %d, want < 20 for an empty product", report.OverallScore)
	}
	if report.Grade != "F" {
		t.Errorf("got grade %s, want F", report.Grade)
	}
	if report.Status != models.SeoStatusCritical {
		t.Errorf("got status %s, want critical", report.Status)
	}
	if len(report.Issues) < 5 {
		t.Errorf("expected many issues, got %d", len(report.Issues))
	}
	if len(report.Recommendations) == 0 || report.Recommendations[0].Impact != models.SeverityCritical {
		t.Errorf("first recommendation should be critical impact: %+v", report.Recommendations)
	}
}

func TestScoreNilProduct(t *testing.T) {
	report := Score(nil)
	if report == nil || report.Grade != "F" {
		t.Errorf("nil product should score like an empty one: %+v", report)
	}
}

func TestScoreMissingMetaOnly(t *testing.T) {
	p := fullyOptimizedProduct()
	p.SeoTitle = ""
	p.SeoDescription = ""

	report := Score(p)

	if report.OverallScore < 85 {
		t.Errorf("got score %d, want >= 85 with only meta fields missing; issues: %+v", report.OverallScore, report.Issues)
	}
	if report.Status != models.SeoStatusOptimized {
		t.Errorf("got status %s, want optimized", report.Status)
	}

	rulesSeen := map[string]bool{}
	for _, issue := range report.Issues {
		rulesSeen[issue.Rule] = true
		if issue.Category != "meta" {
			t.Errorf("unexpected non-meta issue: %+v", issue)
		}
	}
	if !rulesSeen["missing_meta_title"] || !rulesSeen["missing_meta_description"] {
		t.Errorf("expected both missing meta rules, got %v", rulesSeen)
	}
}

func TestScoreIndividualRules(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(p *models.SeoProduct)
		wantRule string
	}{
		{
			name:     "short title",
			mutate:   func(p *models.SeoProduct) { p.Title = "Shirt" },
			wantRule: "title_too_short",
		},
		{
			name:     "spammy exclamation marks",
			mutate:   func(p *models.SeoProduct) { p.Title = "AMAZING DEAL!!! Buy this shirt now before it is gone" },
			wantRule: "title_spam",
		},
		{
			name:     "shouting caps",
			mutate:   func(p *models.SeoProduct) { p.Title = "ORGANIC COTTON CREW NECK TSHIRT CLASSIC BLUE" },
			wantRule: "title_spam",
		},
		{
			name:     "stretched letters",
			mutate:   func(p *models.SeoProduct) { p.Title = "Saaaale on organic cotton t-shirts this week" },
			wantRule: "title_spam",
		},
		{
			name:     "short description",
			mutate:   func(p *models.SeoProduct) { p.Description = "Nice shirt." },
			wantRule: "description_too_short",
		},
		{
			name:     "meta title too long",
			mutate:   func(p *models.SeoProduct) { p.SeoTitle = strings.Repeat("x", 80) },
			wantRule: "meta_title_length",
		},
		{
			name:     "meta description too short",
			mutate:   func(p *models.SeoProduct) { p.SeoDescription = "Too short." },
			wantRule: "meta_description_length",
		},
		{
			name:     "no images",
			mutate:   func(p *models.SeoProduct) { p.Images = nil },
			wantRule: "no_images",
		},
		{
			name: "missing alt text",
			mutate: func(p *models.SeoProduct) {
				p.Images[1].Alt = ""
			},
			wantRule: "missing_alt",
		},
		{
			name: "too few images",
			mutate: func(p *models.SeoProduct) {
				p.Images = p.Images[:1]
			},
			wantRule: "too_few_images",
		},
		{
			name:     "missing tags",
			mutate:   func(p *models.SeoProduct) { p.Tags = nil },
			wantRule: "missing_tags",
		},
		{
			name:     "too few tags",
			mutate:   func(p *models.SeoProduct) { p.Tags = []string{"one"} },
			wantRule: "too_few_tags",
		},
		{
			name:     "missing price",
			mutate:   func(p *models.SeoProduct) { p.Price = 0 },
			wantRule: "missing_price",
		},
		{
			name:     "missing sku",
			mutate:   func(p *models.SeoProduct) { p.SKU = "" },
			wantRule: "missing_sku",
		},
		{
			name:     "missing category",
			mutate:   func(p *models.SeoProduct) { p.Category = "" },
			wantRule: "missing_category",
		},
		{
			name:     "missing slug",
			mutate:   func(p *models.SeoProduct) { p.URLSlug = "" },
			wantRule: "missing_slug",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := fullyOptimizedProduct()
			tc.mutate(p)

			report := Score(p)
			found := false
			for _, issue := range report.Issues {
				if issue.Rule == tc.wantRule {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected rule %s to trigger; issues: %+v", tc.wantRule, report.Issues)
			}
			if report.OverallScore >= 100 {
				t.Errorf("score should drop below 100 when %s triggers", tc.wantRule)
			}
		})
	}
}

func TestRecommendationsSortedByImpact(t *testing.T) {
	report := Score(&models.SeoProduct{Title: "Shirt"})

	rank := map[models.IssueSeverity]int{
		models.SeverityCritical: 0,
		models.SeverityHigh:     1,
		models.SeverityMedium:   2,
		models.SeverityLow:      3,
	}
	for i := 1; i < len(report.Recommendations); i++ {
		if rank[report.Recommendations[i-1].Impact] > rank[report.Recommendations[i].Impact] {
			t.Fatalf("recommendations not sorted by impact: %+v", report.Recommendations)
		}
	}
}

func TestGradeBands(t *testing.T) {
	testCases := []struct {
		score int
		want  string
	}{
		{100, "A"}, {90, "A"}, {89, "B"}, {85, "B"}, {84, "C"}, {55, "C"}, {54, "D"}, {35, "D"}, {34, "F"}, {0, "F"},
	}
	for _, tc := range testCases {
		if got := gradeFor(tc.score); got != tc.want {
			t.Errorf("gradeFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScoreBatch(t *testing.T) {
	good := fullyOptimizedProduct()
	bad := &models.SeoProduct{}

	result := ScoreBatch([]*models.SeoProduct{good, bad, bad})

	if len(result.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(result.Results))
	}

	wantAvg := (result.Results[0].OverallScore + 2*result.Results[1].OverallScore + 1) / 3
	if result.Stats.AvgScore < wantAvg-1 || result.Stats.AvgScore > wantAvg+1 {
		t.Errorf("avg score %d far from expected %d", result.Stats.AvgScore, wantAvg)
	}

	if result.Stats.ByGrade["A"] != 1 || result.Stats.ByGrade["F"] != 2 {
		t.Errorf("unexpected grade distribution: %v", result.Stats.ByGrade)
	}

	if len(result.Stats.TopIssues) == 0 || len(result.Stats.TopIssues) > 5 {
		t.Errorf("top issues should hold at most 5 entries: %v", result.Stats.TopIssues)
	}
}

func TestScoreBatchEmpty(t *testing.T) {
	result := ScoreBatch(nil)
	if len(result.Results) != 0 || result.Stats.AvgScore != 0 {
		t.Errorf("unexpected result for empty batch: %+v", result)
	}
	if result.Stats.TopIssues == nil || result.Stats.ByGrade == nil {
		t.Error("stats collections should be initialized")
	}
}
