package normalizer

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"catalog-quality-service/internal/models"
)

const (
	maxTitleLength       = 500
	maxDescriptionLength = 5000
	maxSKULength         = 64
	maxCategoryLength    = 128
	maxTagLength         = 64
	maxTags              = 25
	maxSeoTitleLength    = 255
	maxSeoDescLength     = 500

	// Description earns full completeness credit at this length,
	// half credit below it.
	descriptionFullCredit = 100
	// Image credit scales up to this many valid images.
	imagesFullCredit = 3

	// DefaultMinCompleteness is the score at or above which a product
	// is considered active rather than error_incomplete.
	DefaultMinCompleteness = 60
)

// ErrNilInput is returned when Normalize receives no object to work on.
var ErrNilInput = errors.New("expected a non-null object")

// Weights configures the completeness contribution per field. A zero
// weight removes the field from scoring entirely.
type Weights struct {
	Title          int `json:"title"`
	Description    int `json:"description"`
	Price          int `json:"price"`
	Images         int `json:"images"`
	Category       int `json:"category"`
	Tags           int `json:"tags"`
	SKU            int `json:"sku"`
	SeoTitle       int `json:"seo_title"`
	SeoDescription int `json:"seo_description"`
}

// DefaultWeights returns the standard completeness weighting.
func DefaultWeights() Weights {
	return Weights{
		Title:          15,
		Description:    15,
		Price:          15,
		Images:         15,
		Category:       10,
		Tags:           10,
		SKU:            10,
		SeoTitle:       5,
		SeoDescription: 5,
	}
}

// Engine normalizes raw product data from arbitrary sources (feeds,
// CSV imports, scrapers) into the canonical product shape. It is
// stateless apart from configuration and safe for concurrent use.
type Engine struct {
	weights   Weights
	threshold int
	log       *logrus.Entry
}

// New creates an engine for the given source context. The context only
// labels log output. Nil weights selects DefaultWeights.
func New(context string, weights *Weights) *Engine {
	return NewWithThreshold(context, weights, DefaultMinCompleteness)
}

// NewWithThreshold creates an engine with a custom completeness
// threshold for the active status.
func NewWithThreshold(context string, weights *Weights, threshold int) *Engine {
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 100 {
		threshold = 100
	}
	return &Engine{
		weights:   w,
		threshold: threshold,
		log:       logrus.WithField("engine", context),
	}
}

// Normalize converts one raw product object into a NormalizedProduct.
// The only error condition is a nil input; every malformed field
// degrades to its zero value and shows up in the completeness score
// instead of failing the call.
func (e *Engine) Normalize(input map[string]interface{}) (*models.NormalizedProduct, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	title := truncateRunes(FlattenHTML(stringField(input, "title")), maxTitleLength)
	if title == "" {
		title = truncateRunes(FlattenHTML(stringField(input, "name")), maxTitleLength)
	}

	description := truncateRunes(FlattenHTML(stringField(input, "description")), maxDescriptionLength)
	price := parsePrice(input["price"])

	p := &models.NormalizedProduct{
		Title:          title,
		Description:    description,
		Price:          price,
		SKU:            optionalString(input, "sku", maxSKULength),
		Category:       optionalString(input, "category", maxCategoryLength),
		Tags:           parseTags(input["tags"]),
		SeoTitle:       optionalString(input, "seo_title", maxSeoTitleLength),
		SeoDescription: optionalString(input, "seo_description", maxSeoDescLength),
		Images:         parseImages(input["images"]),
		SourceURL:      validURL(stringField(input, "source_url")),
	}

	if slug := optionalString(input, "url_slug", maxTitleLength); slug != nil {
		p.URLSlug = slug
	} else if title != "" {
		slug := generateSlug(title)
		p.URLSlug = &slug
	}

	p.CompletenessScore = e.completeness(p)
	if p.CompletenessScore >= e.threshold {
		p.Status = models.ProductStatusActive
	} else {
		p.Status = models.ProductStatusErrorIncomplete
	}
	p.ContentHash = contentHash(p)

	return p, nil
}

// NormalizeBatch normalizes each input independently, preserving
// order. Failed items become error entries, and items whose content
// hash matches an earlier surviving item are reported as duplicates
// rather than returned again. All indices refer to positions in the
// original input slice.
func (e *Engine) NormalizeBatch(inputs []interface{}) *models.BatchNormalizationResult {
	result := &models.BatchNormalizationResult{
		Products:   []*models.NormalizedProduct{},
		Errors:     []models.NormalizationError{},
		Duplicates: []models.DuplicateRef{},
	}

	seen := make(map[string]int, len(inputs))
	completenessSum := 0

	for i, raw := range inputs {
		obj, ok := raw.(map[string]interface{})
		if !ok || obj == nil {
			result.Errors = append(result.Errors, models.NormalizationError{
				Index: i,
				Error: ErrNilInput.Error(),
			})
			continue
		}

		p, err := e.Normalize(obj)
		if err != nil {
			result.Errors = append(result.Errors, models.NormalizationError{
				Index: i,
				Error: err.Error(),
			})
			continue
		}

		if firstIdx, dup := seen[p.ContentHash]; dup {
			result.Duplicates = append(result.Duplicates, models.DuplicateRef{
				Index:       i,
				DuplicateOf: firstIdx,
			})
			continue
		}
		seen[p.ContentHash] = i

		result.Products = append(result.Products, p)
		completenessSum += p.CompletenessScore
	}

	result.Stats = models.BatchStats{
		Success:    len(result.Products),
		Failed:     len(result.Errors),
		Duplicates: len(result.Duplicates),
	}
	if len(result.Products) > 0 {
		result.Stats.AvgCompleteness = int(math.Round(float64(completenessSum) / float64(len(result.Products))))
	}

	e.log.WithFields(logrus.Fields{
		"total":      len(inputs),
		"success":    result.Stats.Success,
		"failed":     result.Stats.Failed,
		"duplicates": result.Stats.Duplicates,
	}).Debug("Batch normalization completed")

	return result
}

// Threshold returns the completeness score required for active status.
func (e *Engine) Threshold() int {
	return e.threshold
}

func (e *Engine) completeness(p *models.NormalizedProduct) int {
	w := e.weights
	total := w.Title + w.Description + w.Price + w.Images + w.Category + w.Tags + w.SKU + w.SeoTitle + w.SeoDescription
	if total == 0 {
		return 100
	}

	earned := 0.0
	if p.Title != "" {
		earned += float64(w.Title)
	}
	if n := len([]rune(p.Description)); n >= descriptionFullCredit {
		earned += float64(w.Description)
	} else if n > 0 {
		earned += float64(w.Description) / 2
	}
	if p.Price > 0 {
		earned += float64(w.Price)
	}
	if n := len(p.Images); n >= imagesFullCredit {
		earned += float64(w.Images)
	} else if n > 0 {
		earned += float64(w.Images) * float64(n) / float64(imagesFullCredit)
	}
	if p.Category != nil {
		earned += float64(w.Category)
	}
	if len(p.Tags) > 0 {
		earned += float64(w.Tags)
	}
	if p.SKU != nil {
		earned += float64(w.SKU)
	}
	if p.SeoTitle != nil {
		earned += float64(w.SeoTitle)
	}
	if p.SeoDescription != nil {
		earned += float64(w.SeoDescription)
	}

	return int(math.Round(earned / float64(total) * 100))
}

// contentHash fingerprints the fields that define product identity for
// dedup purposes. Unit separator keeps "ab"+"c" and "a"+"bc" distinct.
func contentHash(p *models.NormalizedProduct) string {
	canonical := p.Title + "\x1f" + strconv.FormatFloat(p.Price, 'f', 2, 64) + "\x1f" + p.Description
	return fmt.Sprintf("%016x", xxhash.Sum64String(canonical))
}

// parsePrice accepts numbers and the messy price strings real feeds
// produce: currency symbols, thousands separators, decimal commas.
// Anything unparsable or negative becomes 0.
func parsePrice(v interface{}) float64 {
	var price float64
	switch t := v.(type) {
	case float64:
		price = t
	case float32:
		price = float64(t)
	case int:
		price = float64(t)
	case int64:
		price = float64(t)
	case string:
		price = parsePriceString(t)
	default:
		return 0
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return math.Round(price*100) / 100
}

func parsePriceString(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Rightmost separator is the decimal mark, the other is a
		// thousands separator ("1.299,90" and "1,299.90").
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// A comma with one or two trailing digits is a decimal mark
		// ("12,99"); otherwise thousands ("1,299").
		decimals := len(cleaned) - lastComma - 1
		if decimals >= 1 && decimals <= 2 && strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// parseImages keeps only entries with a valid absolute http(s) URL.
// Entries may be plain URL strings or {url, alt} objects.
func parseImages(v interface{}) []models.ProductImage {
	images := []models.ProductImage{}
	items, ok := v.([]interface{})
	if !ok {
		if s, isStr := v.(string); isStr {
			items = []interface{}{s}
		} else {
			return images
		}
	}

	for _, item := range items {
		switch t := item.(type) {
		case string:
			if u := validURL(t); u != nil {
				images = append(images, models.ProductImage{URL: *u})
			}
		case map[string]interface{}:
			if u := validURL(stringField(t, "url")); u != nil {
				images = append(images, models.ProductImage{
					URL: *u,
					Alt: strings.TrimSpace(stringField(t, "alt")),
				})
			}
		}
	}
	return images
}

// parseTags accepts a string array or a comma-separated string.
func parseTags(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil
	}

	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		tag = truncateRunes(strings.TrimSpace(tag), maxTagLength)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func validURL(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	return &s
}

func stringField(input map[string]interface{}, key string) string {
	if v, ok := input[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func optionalString(input map[string]interface{}, key string, maxLen int) *string {
	s := truncateRunes(stringField(input, key), maxLen)
	if s == "" {
		return nil
	}
	return &s
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}

// generateSlug creates a URL-friendly slug from a title.
func generateSlug(title string) string {
	slug := strings.ToLower(title)
	var b strings.Builder
	prevDash := true
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
