package models

// MarketTrend is one trend or alert from the market-intelligence capability.
type MarketTrend struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// MarketIntelligence is the market analysis for a single product.
type MarketIntelligence struct {
	ProductCategory   string        `json:"product_category"`
	Trends            []MarketTrend `json:"trends"`
	SupplyChainStatus string        `json:"supply_chain_status"`
	PriceForecast     string        `json:"price_forecast"`
	KeyManufacturers  []string      `json:"key_manufacturers"`
	LastUpdated       string        `json:"last_updated"`
}

// ActionPlan is a structured plan derived from a free-form chat message.
type ActionPlan struct {
	ActionType           string         `json:"action_type"`
	Description          string         `json:"description"`
	Query                string         `json:"query"`
	Websites             []string       `json:"websites"`
	SpecificRequirements map[string]any `json:"specific_requirements,omitempty"`
}
