package models

// RawProduct is one unnormalized result returned by a single site search.
type RawProduct struct {
	Name    string `json:"name"`
	Price   string `json:"price"`
	URL     string `json:"url"`
	Website string `json:"website"`
}

// ProductImage describes one image found for a product.
type ProductImage struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	SourceURL string `json:"source_url"`
}

// Product is a deduplicated, normalized product ready for display
// or compliance checking.
type Product struct {
	Name           string         `json:"name"`
	ManufacturerID string         `json:"manufacturer_id,omitempty"`
	MPN            string         `json:"mpn,omitempty"`
	Packaging      string         `json:"packaging,omitempty"`
	UnitOfMeasure  string         `json:"unit_of_measure,omitempty"`
	Price          string         `json:"price"`
	PriceNumeric   *float64       `json:"price_numeric,omitempty"`
	URL            string         `json:"url"`
	Website        string         `json:"website"`
	ImageURL       string         `json:"image_url,omitempty"`
	Images         []ProductImage `json:"images"`
}

// FormattedResults is the formatter capability's normalized result set.
type FormattedResults struct {
	Summary       string    `json:"summary"`
	TotalProducts int       `json:"total_products"`
	PriceRange    string    `json:"price_range"`
	Products      []Product `json:"products"`
}

// ImageSearchResult is the image-search capability's answer for one product.
type ImageSearchResult struct {
	ProductName string         `json:"product_name"`
	Images      []ProductImage `json:"images"`
	Error       string         `json:"error,omitempty"`
}

// SearchReport is the aggregate returned by a full procurement run.
type SearchReport struct {
	Query         string    `json:"query"`
	Summary       string    `json:"summary"`
	TotalProducts int       `json:"total_products"`
	PriceRange    string    `json:"price_range"`
	Products      []Product `json:"products"`
}
