package models

// Article is one normalized news item. PublishedAt is stored as the raw
// ISO-8601 string the upstream API returned; it is never parsed or validated.
type Article struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Country     string `gorm:"index" json:"country"`
	Category    string `gorm:"index" json:"category"`
	ClusterID   int    `gorm:"default:0" json:"cluster_id"`
}

// ArticleCreate is the body accepted by POST /news.
type ArticleCreate struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Source      string `json:"source" binding:"required"`
	PublishedAt string `json:"published_at" binding:"required"`
}

// ArticleUpdate is the body accepted by PUT /news/:id. All four fields are
// written as given, so a partial body blanks the omitted columns; this keeps
// the whole-row update semantics of the endpoint it replaces.
type ArticleUpdate struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}
