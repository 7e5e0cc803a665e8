package sync

import (
	"gorm.io/gorm"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Batcher extracts store content in bounded pages for the orchestrator. It
// only reads; pushing batches is the orchestrator's job. Storage failures
// degrade to empty results so callers treat them as "nothing to sync".
type Batcher struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewBatcher(db *gorm.DB, log *logger.Logger) *Batcher {
	return &Batcher{db: db, logger: log}
}

// Page returns one batch of published items for a content type, ordered by
// id so repeated calls walk stable offsets. Fewer than limit items (or none)
// signals the type is exhausted.
func (b *Batcher) Page(contentType string, limit, offset int) []models.ContentItem {
	if contentType == models.ContentTypeProduct {
		return b.Products(limit, offset)
	}
	return b.Posts(contentType, limit, offset)
}

// All aggregates every published item of a content type by repeated paging.
// Used only by the synchronous full-sync path.
func (b *Batcher) All(contentType string) []models.ContentItem {
	var all []models.ContentItem
	offset := 0
	for {
		batch := b.Page(contentType, models.DefaultBatchSize, offset)
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		offset += len(batch)
		b.logger.Debug("aggregated %s batch: %d items, offset %d", contentType, len(batch), offset)
		if len(batch) < models.DefaultBatchSize {
			break
		}
	}
	return all
}

func (b *Batcher) Products(limit, offset int) []models.ContentItem {
	var products []models.Product
	err := b.db.
		Where("status = ?", models.StatusPublish).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		b.logger.Error("failed to fetch products: %v", err)
		return nil
	}

	items := make([]models.ContentItem, 0, len(products))
	for _, p := range products {
		price := p.Price
		regular := p.RegularPrice
		items = append(items, models.ContentItem{
			ID:               p.ID,
			Name:             p.Name,
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			Price:            &price,
			RegularPrice:     &regular,
			SalePrice:        p.SalePrice,
			StockQuantity:    p.StockQuantity,
			StockStatus:      p.StockStatus,
			SKU:              p.SKU,
			URL:              p.Permalink,
			Categories:       p.Categories,
			Tags:             p.Tags,
			Attributes:       p.Attributes,
			ImageURL:         p.ImageURL,
			Type:             models.ContentTypeProduct,
		})
	}
	return items
}

func (b *Batcher) Posts(contentType string, limit, offset int) []models.ContentItem {
	var posts []models.Post
	err := b.db.
		Where("type = ? AND status = ?", contentType, models.StatusPublish).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		b.logger.Error("failed to fetch %s posts: %v", contentType, err)
		return nil
	}

	items := make([]models.ContentItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.ContentItem{
			ID:               p.ID,
			Name:             p.Title,
			Description:      p.Body,
			ShortDescription: p.Excerpt,
			URL:              p.Permalink,
			DateCreated:      p.CreatedAt.Format(timeLayout),
			DateModified:     p.UpdatedAt.Format(timeLayout),
			Author:           p.Author,
			Taxonomies:       p.Taxonomies,
			ImageURL:         p.ImageURL,
			Type:             contentType,
		})
	}
	return items
}

// Orders returns the most recent orders with line items. Always one bounded
// call; orders are never paged further.
func (b *Batcher) Orders(limit int) []models.OrderSummary {
	var orders []models.Order
	err := b.db.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		b.logger.Error("failed to fetch orders: %v", err)
		return nil
	}

	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		items := make([]models.OrderLineItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, models.OrderLineItem{
				Name:     it.Name,
				Quantity: it.Quantity,
				Total:    it.Total,
			})
		}
		summaries = append(summaries, models.OrderSummary{
			ID:          o.ID,
			Status:      o.Status,
			Total:       o.Total,
			DateCreated: o.CreatedAt.Format(timeLayout),
			Items:       items,
		})
	}
	return summaries
}

// CountPublished returns the number of published items for a content type.
func (b *Batcher) CountPublished(contentType string) int {
	var count int64
	var err error
	if contentType == models.ContentTypeProduct {
		err = b.db.Model(&models.Product{}).
			Where("status = ?", models.StatusPublish).
			Count(&count).Error
	} else {
		err = b.db.Model(&models.Post{}).
			Where("type = ? AND status = ?", contentType, models.StatusPublish).
			Count(&count).Error
	}
	if err != nil {
		b.logger.Error("failed to count %s items: %v", contentType, err)
		return 0
	}
	return int(count)
}
