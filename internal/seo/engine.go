// Package seo implements rule-based SEO auditing of product records.
// Scoring starts from 100 and deducts per triggered rule; it never
// fails, missing fields simply trigger their rules.
package seo

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"catalog-quality-service/internal/models"
)

const (
	minTitleLength       = 20
	minDescriptionLength = 100

	metaTitleMin = 30
	metaTitleMax = 65
	metaDescMin  = 70
	metaDescMax  = 160

	recommendedImages = 3
	recommendedTags   = 3
)

// rule is one audit check: deduction points, classification, and the
// messages it produces when triggered.
type rule struct {
	category  string
	name      string
	severity  models.IssueSeverity
	deduction int
	message   string
	action    string
	applies   func(p *models.SeoProduct) bool
}

// rules are evaluated in order; recommendation order within an impact
// level follows this order.
var rules = []rule{
	{
		category: "content", name: "missing_title", severity: models.SeverityCritical, deduction: 15,
		message: "Product has no title",
		action:  "Add a descriptive product title",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.Title) == "" },
	},
	{
		category: "content", name: "title_too_short", severity: models.SeverityMedium, deduction: 8,
		message: fmt.Sprintf("Title is shorter than %d characters", minTitleLength),
		action:  fmt.Sprintf("Expand the title to at least %d characters with descriptive keywords", minTitleLength),
		applies: func(p *models.SeoProduct) bool {
			t := strings.TrimSpace(p.Title)
			return t != "" && len([]rune(t)) < minTitleLength
		},
	},
	{
		category: "content", name: "title_spam", severity: models.SeverityMedium, deduction: 8,
		message: "Title looks spammy (excessive caps, punctuation or repeated letters)",
		action:  "Rewrite the title in natural sentence case without promotional punctuation",
		applies: func(p *models.SeoProduct) bool { return isSpammyTitle(p.Title) },
	},
	{
		category: "content", name: "missing_description", severity: models.SeverityCritical, deduction: 20,
		message: "Product has no description",
		action:  "Write a product description covering features and benefits",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.Description) == "" },
	},
	{
		category: "content", name: "description_too_short", severity: models.SeverityMedium, deduction: 10,
		message: fmt.Sprintf("Description is shorter than %d characters", minDescriptionLength),
		action:  fmt.Sprintf("Expand the description to at least %d characters", minDescriptionLength),
		applies: func(p *models.SeoProduct) bool {
			d := strings.TrimSpace(p.Description)
			return d != "" && len([]rune(d)) < minDescriptionLength
		},
	},
	{
		category: "meta", name: "missing_meta_title", severity: models.SeverityHigh, deduction: 8,
		message: "Meta title is not set",
		action:  "Set a meta title so search results do not fall back to the raw product title",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.SeoTitle) == "" },
	},
	{
		category: "meta", name: "missing_meta_description", severity: models.SeverityHigh, deduction: 7,
		message: "Meta description is not set",
		action:  "Set a meta description summarizing the product for search snippets",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.SeoDescription) == "" },
	},
	{
		category: "meta", name: "meta_title_length", severity: models.SeverityLow, deduction: 5,
		message: fmt.Sprintf("Meta title is outside the %d-%d character range", metaTitleMin, metaTitleMax),
		action:  fmt.Sprintf("Adjust the meta title to %d-%d characters", metaTitleMin, metaTitleMax),
		applies: func(p *models.SeoProduct) bool {
			n := len([]rune(strings.TrimSpace(p.SeoTitle)))
			return n > 0 && (n < metaTitleMin || n > metaTitleMax)
		},
	},
	{
		category: "meta", name: "meta_description_length", severity: models.SeverityLow, deduction: 5,
		message: fmt.Sprintf("Meta description is outside the %d-%d character range", metaDescMin, metaDescMax),
		action:  fmt.Sprintf("Adjust the meta description to %d-%d characters", metaDescMin, metaDescMax),
		applies: func(p *models.SeoProduct) bool {
			n := len([]rune(strings.TrimSpace(p.SeoDescription)))
			return n > 0 && (n < metaDescMin || n > metaDescMax)
		},
	},
	{
		category: "media", name: "no_images", severity: models.SeverityCritical, deduction: 15,
		message: "Product has no images",
		action:  "Add product images; listings without images rank and convert poorly",
		applies: func(p *models.SeoProduct) bool { return len(p.Images) == 0 },
	},
	{
		category: "media", name: "missing_alt", severity: models.SeverityMedium, deduction: 8,
		message: "One or more images have no alt text",
		action:  "Add descriptive alt text to every image",
		applies: func(p *models.SeoProduct) bool {
			for _, img := range p.Images {
				if strings.TrimSpace(img.Alt) == "" {
					return true
				}
			}
			return false
		},
	},
	{
		category: "media", name: "too_few_images", severity: models.SeverityLow, deduction: 5,
		message: fmt.Sprintf("Fewer than %d product images", recommendedImages),
		action:  fmt.Sprintf("Add images from multiple angles (at least %d)", recommendedImages),
		applies: func(p *models.SeoProduct) bool {
			return len(p.Images) > 0 && len(p.Images) < recommendedImages
		},
	},
	{
		category: "tags", name: "missing_tags", severity: models.SeverityHigh, deduction: 8,
		message: "Product has no tags",
		action:  "Tag the product with relevant search terms",
		applies: func(p *models.SeoProduct) bool { return len(p.Tags) == 0 },
	},
	{
		category: "tags", name: "too_few_tags", severity: models.SeverityLow, deduction: 4,
		message: fmt.Sprintf("Fewer than %d tags", recommendedTags),
		action:  fmt.Sprintf("Add more tags (at least %d) to improve discoverability", recommendedTags),
		applies: func(p *models.SeoProduct) bool {
			return len(p.Tags) > 0 && len(p.Tags) < recommendedTags
		},
	},
	{
		category: "structure", name: "missing_price", severity: models.SeverityMedium, deduction: 4,
		message: "Product has no price",
		action:  "Set a price; rich results require structured offer data",
		applies: func(p *models.SeoProduct) bool { return p.Price <= 0 },
	},
	{
		category: "structure", name: "missing_sku", severity: models.SeverityLow, deduction: 3,
		message: "Product has no SKU",
		action:  "Assign a SKU for stable product identification",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.SKU) == "" },
	},
	{
		category: "structure", name: "missing_category", severity: models.SeverityLow, deduction: 3,
		message: "Product has no category",
		action:  "Assign the product to a category",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.Category) == "" },
	},
	{
		category: "structure", name: "missing_slug", severity: models.SeverityLow, deduction: 3,
		message: "Product has no URL slug",
		action:  "Set a keyword-bearing URL slug",
		applies: func(p *models.SeoProduct) bool { return strings.TrimSpace(p.URLSlug) == "" },
	},
}

var severityRank = map[models.IssueSeverity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
}

// Score audits a single product and returns its SEO report.
func Score(p *models.SeoProduct) *models.SeoScoreReport {
	if p == nil {
		p = &models.SeoProduct{}
	}

	report := &models.SeoScoreReport{
		Issues:          []models.SeoIssue{},
		Recommendations: []models.SeoRecommendation{},
	}

	deducted := 0
	seenActions := make(map[string]bool)
	for _, r := range rules {
		if !r.applies(p) {
			continue
		}
		deducted += r.deduction
		report.Issues = append(report.Issues, models.SeoIssue{
			Category: r.category,
			Rule:     r.name,
			Severity: r.severity,
			Message:  r.message,
		})
		if !seenActions[r.action] {
			seenActions[r.action] = true
			report.Recommendations = append(report.Recommendations, models.SeoRecommendation{
				Impact: r.severity,
				Action: r.action,
			})
		}
	}

	score := 100 - deducted
	if score < 0 {
		score = 0
	}
	report.OverallScore = score
	report.Grade = gradeFor(score)
	report.Status = statusFor(score)

	sort.SliceStable(report.Recommendations, func(i, j int) bool {
		return severityRank[report.Recommendations[i].Impact] < severityRank[report.Recommendations[j].Impact]
	})

	return report
}

// ScoreBatch audits each product and aggregates batch statistics.
func ScoreBatch(products []*models.SeoProduct) *models.SeoBatchResult {
	result := &models.SeoBatchResult{
		Results: make([]*models.SeoScoreReport, 0, len(products)),
		Stats: models.SeoBatchStats{
			ByGrade:   map[string]int{},
			TopIssues: []string{},
		},
	}

	scoreSum := 0
	issueCounts := map[string]int{}
	for _, p := range products {
		report := Score(p)
		result.Results = append(result.Results, report)
		scoreSum += report.OverallScore
		result.Stats.ByGrade[report.Grade]++
		for _, issue := range report.Issues {
			issueCounts[issue.Rule]++
		}
	}

	if len(result.Results) > 0 {
		result.Stats.AvgScore = int(math.Round(float64(scoreSum) / float64(len(result.Results))))
	}
	result.Stats.TopIssues = topIssues(issueCounts, 5)

	return result
}

func gradeFor(score int) string {
	// A and B cover the optimized band only.
	switch {
	case score >= 90:
		return "A"
	case score >= 85:
		return "B"
	case score >= 55:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}

func statusFor(score int) models.SeoStatus {
	switch {
	case score >= 85:
		return models.SeoStatusOptimized
	case score < 20:
		return models.SeoStatusCritical
	default:
		return models.SeoStatusNeedsImprovement
	}
}

// topIssues returns the n most frequent rule names, ties broken
// alphabetically for stable output.
func topIssues(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// isSpammyTitle flags promotional-looking titles: stacked exclamation
// marks, shouting caps, or stretched letters ("SAAAALE").
func isSpammyTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	if strings.Count(title, "!") >= 3 {
		return true
	}

	letters, uppers := 0, 0
	for _, r := range title {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters >= 10 && float64(uppers)/float64(letters) > 0.7 {
		return true
	}

	run := 0
	var prev rune
	for _, r := range title {
		lower := unicode.ToLower(r)
		if unicode.IsLetter(r) && lower == prev {
			run++
			if run >= 4 {
				return true
			}
		} else {
			run = 1
		}
		prev = lower
	}

	return false
}
