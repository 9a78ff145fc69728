package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/forumcore/models"
)

// aggregateColumns are the columns a conditional update may write.
var aggregateColumns = []string{
	"title", "content", "category", "tags",
	"likes", "like_count", "replies", "reply_count",
	"is_pinned", "is_locked", "is_resolved",
	"version", "updated_at",
	"search_title", "search_content", "search_tags",
}

// GormRepository stores posts through gorm. It works with the mysql,
// postgres and sqlite dialectors.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository wraps an opened gorm handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or extends the posts table and fills the search columns of
// rows written before they existed.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Post{}); err != nil {
		return err
	}
	var batch []models.Post
	return db.Where("search_tags IS NULL OR search_tags = ?", "").
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				p := &batch[i]
				p.Refresh()
				err := tx.Model(&models.Post{}).Where("id = ?", p.ID).UpdateColumns(map[string]interface{}{
					"search_title":   p.SearchTitle,
					"search_content": p.SearchContent,
					"search_tags":    p.SearchTags,
				}).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}

func (r *GormRepository) Insert(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormRepository) Update(ctx context.Context, post *models.Post) error {
	expected := post.Version
	post.Version = expected + 1

	res := r.db.WithContext(ctx).
		Model(post).
		Where("version = ?", expected).
		Select(aggregateColumns).
		Updates(post)
	if res.Error != nil {
		post.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		post.Version = expected
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, q ListQuery) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(filterScope(q)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	if q.Offset >= int(total) || q.Limit <= 0 {
		return posts, total, nil
	}

	err := r.db.WithContext(ctx).
		Scopes(filterScope(q)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "is_pinned"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(sortOrDefault(q.Sort))}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *GormRepository) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByCategory: map[string]int64{}}
	db := r.db.WithContext(ctx).Model(&models.Post{}).Session(&gorm.Session{})

	if err := db.Count(&st.Posts).Error; err != nil {
		return st, err
	}
	if err := db.Select("COALESCE(SUM(reply_count), 0)").Scan(&st.Replies).Error; err != nil {
		return st, err
	}
	if err := db.Where("is_resolved = ?", true).Count(&st.ResolvedPosts).Error; err != nil {
		return st, err
	}
	if err := db.Where("is_pinned = ?", true).Count(&st.PinnedPosts).Error; err != nil {
		return st, err
	}

	var rows []struct {
		Category string
		Count    int64
	}
	if err := db.Select("category, COUNT(*) AS count").Group("category").Scan(&rows).Error; err != nil {
		return st, err
	}
	for _, row := range rows {
		st.ByCategory[row.Category] = row.Count
	}
	return st, nil
}

func filterScope(q ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.Author != "" {
			db = db.Where("author_id = ?", q.Author)
		}
		if s := strings.TrimSpace(q.Search); s != "" {
			// Tags are stored as <sep>tag<sep>tag<sep>, and the folded needle never
			// contains <sep>, so a match cannot span two tags.
			pattern := "%" + escapeLike(models.FoldSearch(s)) + "%"
			op := likeOperator(db)
			db = db.Where(
				fmt.Sprintf("(search_title %[1]s ? ESCAPE '!' OR search_content %[1]s ? ESCAPE '!' OR search_tags %[1]s ? ESCAPE '!')", op),
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

// likeOperator compares bytes on mysql, whose default collations fold accents.
func likeOperator(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		return "LIKE BINARY"
	}
	return "LIKE"
}

// escapeLike neutralises LIKE wildcards. '!' is used as the escape character
// because backslash handling differs between mysql and sqlite.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func sortOrDefault(f SortField) SortField {
	if f == "" {
		return SortCreatedAt
	}
	return f
}
