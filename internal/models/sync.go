package models

// ContentTypeProduct gets special handling everywhere: product items carry
// price/stock/attribute fields the generic content path does not.
const ContentTypeProduct = "product"

type SyncStep string

const (
	StepStart   SyncStep = "start"
	StepContent SyncStep = "content"
	StepOrders  SyncStep = "orders"
)

const DefaultBatchSize = 50

// SyncProgress is the persisted checkpoint for a background sync run. Absence
// of a persisted record means no sync is in progress.
type SyncProgress struct {
	Step               SyncStep `json:"step"`
	CurrentContentType string   `json:"current_content_type"`
	ContentTypeQueue   []string `json:"content_type_queue"`
	CurrentProcessed   int      `json:"current_processed"`
	CurrentTotal       int      `json:"current_total"`
	OverallProcessed   int      `json:"overall_processed"`
	OverallTotal       int      `json:"overall_total"`
	BatchSize          int      `json:"batch_size"`
}

func NewSyncProgress(batchSize int) *SyncProgress {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SyncProgress{
		Step:             StepStart,
		ContentTypeQueue: []string{},
		BatchSize:        batchSize,
	}
}

// Normalize repairs a progress record loaded from storage. Malformed data
// degrades to a fresh start state rather than failing the sync.
func (p *SyncProgress) Normalize() {
	switch p.Step {
	case StepStart, StepContent, StepOrders:
	default:
		p.Step = StepStart
		p.CurrentContentType = ""
		p.ContentTypeQueue = []string{}
	}
	if p.ContentTypeQueue == nil {
		p.ContentTypeQueue = []string{}
	}
	if p.CurrentProcessed < 0 {
		p.CurrentProcessed = 0
	}
	if p.CurrentTotal < 0 {
		p.CurrentTotal = 0
	}
	if p.OverallProcessed < 0 {
		p.OverallProcessed = 0
	}
	if p.OverallTotal < 0 {
		p.OverallTotal = 0
	}
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
}

// StoreInfo is the store metadata sent during the start step.
type StoreInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Currency string `json:"currency,omitempty"`
	Version  string `json:"version,omitempty"`
}

// ContentItem is the normalized record pushed to the assistant API. Product
// items fill the commerce fields; generic content fills author/taxonomies.
// Never persisted, produced per batch and sent immediately.
type ContentItem struct {
	ID               uint                `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Price            *float64            `json:"price,omitempty"`
	RegularPrice     *float64            `json:"regular_price,omitempty"`
	SalePrice        *float64            `json:"sale_price,omitempty"`
	StockQuantity    *int                `json:"stock_quantity,omitempty"`
	StockStatus      string              `json:"stock_status,omitempty"`
	SKU              string              `json:"sku,omitempty"`
	URL              string              `json:"url"`
	DateCreated      string              `json:"date_created,omitempty"`
	DateModified     string              `json:"date_modified,omitempty"`
	Author           string              `json:"author,omitempty"`
	Categories       []string            `json:"categories,omitempty"`
	Tags             []string            `json:"tags,omitempty"`
	Taxonomies       map[string][]string `json:"taxonomies,omitempty"`
	Attributes       []ProductAttribute  `json:"attributes,omitempty"`
	ImageURL         string              `json:"image_url"`
	Type             string              `json:"type"`
}

// OrderSummary is the bounded order record for the terminal sync phase.
type OrderSummary struct {
	ID          uint            `json:"id"`
	Status      string          `json:"status"`
	Total       float64         `json:"total"`
	DateCreated string          `json:"date_created"`
	Items       []OrderLineItem `json:"items"`
}

type OrderLineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}
