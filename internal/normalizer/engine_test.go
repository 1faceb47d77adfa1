package normalizer

import (
	"testing"

	"catalog-quality-service/internal/models"
)

func TestNormalizeTitleFallback(t *testing.T) {
	e := New("test", nil)

	testCases := []struct {
		name  string
		input map[string]interface{}
		want  string
	}{
		{
			name:  "uses title when present",
			input: map[string]interface{}{"title": "Blue Shirt", "name": "Other Name"},
			want:  "Blue Shirt",
		},
		{
			name:  "falls back to name",
			input: map[string]interface{}{"name": "Fallback Name"},
			want:  "Fallback Name",
		},
		{
			name:  "strips markup from title",
			input: map[string]interface{}{"title": "<b>Bold</b> Shirt"},
			want:  "Bold Shirt",
		},
		{
			name:  "trims whitespace",
			input: map[string]interface{}{"title": "  Padded  "},
			want:  "Padded",
		},
		{
			name:  "empty when neither present",
			input: map[string]interface{}{"price": 10.0},
			want:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := e.Normalize(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Title != tc.want {
				t.Errorf("got title %q, want %q", p.Title, tc.want)
			}
		})
	}
}

func TestNormalizeNilInput(t *testing.T) {
	e := New("test", nil)
	if _, err := e.Normalize(nil); err != ErrNilInput {
		t.Errorf("got error %v, want ErrNilInput", err)
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name  string
		input interface{}
		want  float64
	}{
		{name: "float passthrough", input: 19.99, want: 19.99},
		{name: "integer", input: 42, want: 42},
		{name: "plain string", input: "19.99", want: 19.99},
		{name: "decimal comma with currency", input: "12,99€", want: 12.99},
		{name: "dollar prefix", input: "$1,299.50", want: 1299.50},
		{name: "thousands dot decimal comma", input: "1.299,90", want: 1299.90},
		{name: "thousands comma no decimals", input: "1,299", want: 1299},
		{name: "single decimal comma digit", input: "5,5", want: 5.5},
		{name: "unparsable string", input: "not a number", want: 0},
		{name: "negative clamps to zero", input: "-5.00", want: 0},
		{name: "nil", input: nil, want: 0},
		{name: "rounds to cents", input: 10.999, want: 11.00},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parsePrice(tc.input); got != tc.want {
				t.Errorf("parsePrice(%v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeImages(t *testing.T) {
	e := New("test", nil)

	p, err := e.Normalize(map[string]interface{}{
		"title": "Camera",
		"images": []interface{}{
			"https://cdn.example.com/a.jpg",
			map[string]interface{}{"url": "https://cdn.example.com/b.jpg", "alt": "Side view"},
			"ftp://cdn.example.com/c.jpg",
			"not-a-url",
			map[string]interface{}{"alt": "no url"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(p.Images))
	}
	if p.Images[0].URL != "https://cdn.example.com/a.jpg" {
		t.Errorf("unexpected first image: %+v", p.Images[0])
	}
	if p.Images[1].Alt != "Side view" {
		t.Errorf("alt text not preserved: %+v", p.Images[1])
	}
}

func TestNormalizeTags(t *testing.T) {
	e := New("test", nil)

	t.Run("comma separated string", func(t *testing.T) {
		p, _ := e.Normalize(map[string]interface{}{"title": "X", "tags": "summer, cotton ,  summer , "})
		want := []string{"summer", "cotton"}
		if len(p.Tags) != len(want) {
			t.Fatalf("got tags %v, want %v", p.Tags, want)
		}
		for i := range want {
			if p.Tags[i] != want[i] {
				t.Errorf("got tags %v, want %v", p.Tags, want)
			}
		}
	})

	t.Run("string array", func(t *testing.T) {
		p, _ := e.Normalize(map[string]interface{}{"title": "X", "tags": []interface{}{"a", "b", 3}})
		if len(p.Tags) != 2 {
			t.Errorf("got tags %v, want [a b]", p.Tags)
		}
	})
}

func TestNormalizeSourceURL(t *testing.T) {
	e := New("test", nil)

	p, _ := e.Normalize(map[string]interface{}{"title": "X", "source_url": "https://shop.example.com/p/1"})
	if p.SourceURL == nil || *p.SourceURL != "https://shop.example.com/p/1" {
		t.Errorf("valid source url dropped: %v", p.SourceURL)
	}

	p, _ = e.Normalize(map[string]interface{}{"title": "X", "source_url": "javascript:alert(1)"})
	if p.SourceURL != nil {
		t.Errorf("invalid source url kept: %v", *p.SourceURL)
	}
}

func TestCompletenessScoring(t *testing.T) {
	e := New("test", nil)

	longDescription := "This is a thorough product description that easily clears the one hundred character mark used for full credit."

	t.Run("title only is incomplete", func(t *testing.T) {
		p, _ := e.Normalize(map[string]interface{}{"name": "Basic"})
		if p.CompletenessScore != 15 {
			t.Errorf("got score %d, want 15", p.CompletenessScore)
		}
		if p.Status != models.ProductStatusErrorIncomplete {
			t.Errorf("got status %s, want error_incomplete", p.Status)
		}
	})

	t.Run("fully populated scores 100", func(t *testing.T) {
		p, _ := e.Normalize(map[string]interface{}{
			"title":           "Complete Product",
			"description":     longDescription,
			"price":           19.99,
			"sku":             "SKU-1",
			"category":        "Apparel",
			"tags":            "a,b,c",
			"seo_title":       "Complete Product | Store",
			"seo_description": "Meta description",
			"images": []interface{}{
				"https://cdn.example.com/1.jpg",
				"https://cdn.example.com/2.jpg",
				"https://cdn.example.com/3.jpg",
			},
		})
		if p.CompletenessScore != 100 {
			t.Errorf("got score %d, want 100", p.CompletenessScore)
		}
		if p.Status != models.ProductStatusActive {
			t.Errorf("got status %s, want active", p.Status)
		}
	})

	t.Run("short description earns half credit", func(t *testing.T) {
		full, _ := e.Normalize(map[string]interface{}{"title": "X", "description": longDescription})
		short, _ := e.Normalize(map[string]interface{}{"title": "X", "description": "short"})
		none, _ := e.Normalize(map[string]interface{}{"title": "X"})
		if !(none.CompletenessScore < short.CompletenessScore && short.CompletenessScore < full.CompletenessScore) {
			t.Errorf("description credit not monotonic: none=%d short=%d full=%d",
				none.CompletenessScore, short.CompletenessScore, full.CompletenessScore)
		}
	})

	t.Run("custom weights", func(t *testing.T) {
		custom := New("test", &Weights{Title: 50, Description: 50})
		p, _ := custom.Normalize(map[string]interface{}{
			"title":       "Only These Matter",
			"description": longDescription,
		})
		if p.CompletenessScore != 100 {
			t.Errorf("got score %d, want 100", p.CompletenessScore)
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		strict := NewWithThreshold("test", nil, 90)
		p, _ := strict.Normalize(map[string]interface{}{"title": "X", "price": 5.0})
		if p.Status != models.ProductStatusErrorIncomplete {
			t.Errorf("got status %s, want error_incomplete under threshold 90", p.Status)
		}
	})
}

func TestContentHash(t *testing.T) {
	e := New("test", nil)

	a, _ := e.Normalize(map[string]interface{}{"title": "Shirt", "price": "12,99", "description": "Nice shirt"})
	b, _ := e.Normalize(map[string]interface{}{"title": "Shirt", "price": 12.99, "description": "Nice shirt", "sku": "DIFFERENT"})
	c, _ := e.Normalize(map[string]interface{}{"title": "Shirt", "price": 13.99, "description": "Nice shirt"})

	if a.ContentHash == "" || len(a.ContentHash) != 16 {
		t.Fatalf("unexpected hash format: %q", a.ContentHash)
	}
	if a.ContentHash != b.ContentHash {
		t.Error("identical title/price/description should hash equal regardless of other fields")
	}
	if a.ContentHash == c.ContentHash {
		t.Error("different price should produce a different hash")
	}
}

func TestNormalizeBatch(t *testing.T) {
	e := New("test", nil)

	t.Run("error isolation and duplicate indices", func(t *testing.T) {
		inputs := []interface{}{
			map[string]interface{}{"title": "First", "price": 10.0},
			nil,
			map[string]interface{}{"title": "First", "price": 10.0},
			map[string]interface{}{"title": "Second", "price": 20.0},
		}

		result := e.NormalizeBatch(inputs)

		if len(result.Products) != 2 {
			t.Fatalf("got %d products, want 2", len(result.Products))
		}
		if result.Products[0].Title != "First" || result.Products[1].Title != "Second" {
			t.Errorf("order not preserved: %s, %s", result.Products[0].Title, result.Products[1].Title)
		}

		if len(result.Errors) != 1 || result.Errors[0].Index != 1 {
			t.Fatalf("unexpected errors: %+v", result.Errors)
		}
		if result.Errors[0].Error != "expected a non-null object" {
			t.Errorf("unexpected error message: %q", result.Errors[0].Error)
		}

		if len(result.Duplicates) != 1 {
			t.Fatalf("unexpected duplicates: %+v", result.Duplicates)
		}
		if result.Duplicates[0].Index != 2 || result.Duplicates[0].DuplicateOf != 0 {
			t.Errorf("duplicate indices should be original positions: %+v", result.Duplicates[0])
		}

		if result.Stats.Success != 2 || result.Stats.Failed != 1 || result.Stats.Duplicates != 1 {
			t.Errorf("unexpected stats: %+v", result.Stats)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		result := e.NormalizeBatch(nil)
		if len(result.Products) != 0 || result.Stats.AvgCompleteness != 0 {
			t.Errorf("unexpected result for empty batch: %+v", result)
		}
	})

	t.Run("avg completeness over surviving products", func(t *testing.T) {
		inputs := []interface{}{
			map[string]interface{}{"title": "A"},
			map[string]interface{}{"title": "B"},
		}
		result := e.NormalizeBatch(inputs)
		if result.Stats.AvgCompleteness != result.Products[0].CompletenessScore {
			t.Errorf("avg %d, want %d", result.Stats.AvgCompleteness, result.Products[0].CompletenessScore)
		}
	})
}

func TestGenerateSlug(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Blue Cotton T-Shirt", "blue-cotton-t-shirt"},
		{"  Spaced  Out  ", "spaced-out"},
		{"100% Wool!", "100-wool"},
	}
	for _, tc := range testCases {
		if got := generateSlug(tc.in); got != tc.want {
			t.Errorf("generateSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
