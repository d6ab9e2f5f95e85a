package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kurakani/kurakani/models"
)

// ArticleRepository owns the articles table. Every method takes a context and
// runs on the injected gorm handle; no package-level state.
type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ReplaceAll swaps the entire stored set for the given one in a single
// transaction, so a concurrent reader never observes the table empty between
// the delete and the insert.
func (r *ArticleRepository) ReplaceAll(ctx context.Context, articles []models.Article) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Article{}).Error; err != nil {
			return fmt.Errorf("failed to clear articles: %w", err)
		}
		if len(articles) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(articles, 100).Error; err != nil {
			return fmt.Errorf("failed to insert articles: %w", err)
		}
		return nil
	})
}

// InsertMany appends the given articles. No uniqueness constraint applies, so
// fetching the same article twice stores it twice.
func (r *ArticleRepository) InsertMany(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(articles, 100).Error; err != nil {
		return fmt.Errorf("failed to insert articles: %w", err)
	}
	return nil
}

// List returns rows in insertion order, sliced by LIMIT/OFFSET in SQL.
func (r *ArticleRepository) List(ctx context.Context, limit, offset int) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// Filtered applies the optional country/category/text filters conjunctively.
// Country and category match case-insensitively regardless of how the row was
// stored; query matches as a substring of title or content.
func (r *ArticleRepository) Filtered(ctx context.Context, country, category, query string, limit, offset int) ([]models.Article, error) {
	tx := r.db.WithContext(ctx).Model(&models.Article{})
	if country != "" {
		tx = tx.Where("LOWER(country) = ?", strings.ToLower(country))
	}
	if category != "" {
		tx = tx.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var articles []models.Article
	if err := tx.Order("id").Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to filter articles: %w", err)
	}
	return articles, nil
}

// UpdateByID rewrites the four mutable columns of one row. The boolean is
// false when no row has that id.
func (r *ArticleRepository) UpdateByID(ctx context.Context, id uint, fields models.ArticleUpdate) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":        fields.Title,
			"content":      fields.Content,
			"source":       fields.Source,
			"published_at": fields.PublishedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update article %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID removes one row. The boolean is false when no row has that id.
func (r *ArticleRepository) DeleteByID(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Article{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete article %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ClearAll empties the table.
func (r *ArticleRepository) ClearAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Article{}).Error; err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}
	return nil
}

// FindByID returns one row by id, or ErrArticleNotFound.
func (r *ArticleRepository) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).First(&article, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return &article, nil
}

// CountAll returns the number of stored articles.
func (r *ArticleRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}
