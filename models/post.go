package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category is the fixed set of discussion areas a post can live in.
type Category string

const (
	CategoryGeneral         Category = "general"
	CategoryTechniques      Category = "techniques"
	CategoryBusiness        Category = "business"
	CategoryTools           Category = "tools"
	CategoryFabric          Category = "fabric"
	CategoryDesign          Category = "design"
	CategoryTroubleshooting Category = "troubleshooting"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryTechniques,
	CategoryBusiness,
	CategoryTools,
	CategoryFabric,
	CategoryDesign,
	CategoryTroubleshooting,
}

// ParseCategory resolves s to a known category. An empty string maps to general.
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return CategoryGeneral, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Post is the aggregate root of a discussion thread. Replies and likes are
// embedded and persisted together with the post as a single row.
type Post struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"size:64;index;not null" json:"author"`
	Category   Category  `gorm:"size:32;index;not null" json:"category"`
	Tags       []string  `gorm:"serializer:json;type:text" json:"tags"`
	Views      int64     `gorm:"not null;default:0" json:"views"`
	Likes      LikeSet   `gorm:"serializer:json;type:text" json:"likes"`
	LikeCount  int       `gorm:"index;not null;default:0" json:"likeCount"`
	Replies    []Reply   `gorm:"serializer:json;type:text" json:"replies"`
	ReplyCount int       `gorm:"not null;default:0" json:"replyCount"`
	IsPinned   bool      `gorm:"index;not null;default:false" json:"isPinned"`
	IsLocked   bool      `gorm:"not null;default:false" json:"isLocked"`
	IsResolved bool      `gorm:"not null;default:false" json:"isResolved"`
	Version    int64     `gorm:"not null" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Search columns hold FoldSearch forms so every dialect matches the same way.
	SearchTitle   string `gorm:"type:text" json:"-"`
	SearchContent string `gorm:"type:text" json:"-"`
	SearchTags    string `gorm:"type:text" json:"-"`

	replyIndex map[string]int
}

// BeforeSave keeps the denormalized counters in step with the embedded collections.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.Refresh()
	return nil
}

// AfterFind replaces nil collections so the JSON shape is stable.
func (p *Post) AfterFind(tx *gorm.DB) error {
	p.normalize()
	return nil
}

// Refresh recomputes LikeCount and ReplyCount and fills nil collections.
func (p *Post) Refresh() {
	p.normalize()
	p.LikeCount = p.Likes.Len()
	p.ReplyCount = len(p.Replies)
	p.reindex()
}

// SearchSeparator delimits tags in SearchTags. FoldSearch never yields it.
const SearchSeparator = "\x1f"

// FoldSearch is the normalized form used for substring search.
func FoldSearch(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, SearchSeparator, " "))
}

func (p *Post) reindex() {
	p.SearchTitle = FoldSearch(p.Title)
	p.SearchContent = FoldSearch(p.Content)
	var b strings.Builder
	b.WriteString(SearchSeparator)
	for _, t := range p.Tags {
		b.WriteString(FoldSearch(t))
		b.WriteString(SearchSeparator)
	}
	p.SearchTags = b.String()
}

// Touch records a mutation at now.
func (p *Post) Touch(now time.Time) {
	p.UpdatedAt = now
	p.Refresh()
}

func (p *Post) normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes == nil {
		p.Likes = LikeSet{}
	}
	if p.Replies == nil {
		p.Replies = []Reply{}
	}
	for i := range p.Replies {
		p.Replies[i].normalize()
	}
}

// ReplyIndex returns the position of the reply with the given id.
func (p *Post) ReplyIndex(id string) (int, bool) {
	if p.replyIndex == nil || len(p.replyIndex) != len(p.Replies) {
		p.replyIndex = make(map[string]int, len(p.Replies))
		for i, r := range p.Replies {
			p.replyIndex[r.ID] = i
		}
	}
	i, ok := p.replyIndex[id]
	return i, ok
}

// Reply returns a pointer into the owned reply list, or nil.
func (p *Post) Reply(id string) *Reply {
	i, ok := p.ReplyIndex(id)
	if !ok {
		return nil
	}
	return &p.Replies[i]
}

// AppendReply adds r at the end of the thread.
func (p *Post) AppendReply(r Reply) {
	r.normalize()
	p.Replies = append(p.Replies, r)
	if p.replyIndex != nil {
		p.replyIndex[r.ID] = len(p.Replies) - 1
	}
}

// MarkSolution clears any previous solution, flags the reply with the given
// id and resolves the post. It reports false when the reply does not exist,
// in which case nothing is changed.
func (p *Post) MarkSolution(replyID string) bool {
	idx, ok := p.ReplyIndex(replyID)
	if !ok {
		return false
	}
	for i := range p.Replies {
		p.Replies[i].IsSolution = i == idx
	}
	p.IsResolved = true
	return true
}

// Solution returns the accepted reply, if any.
func (p *Post) Solution() *Reply {
	for i := range p.Replies {
		if p.Replies[i].IsSolution {
			return &p.Replies[i]
		}
	}
	return nil
}

// Clone returns a deep copy that shares no mutable state with p.
func (p *Post) Clone() *Post {
	c := *p
	c.replyIndex = nil
	c.Tags = append([]string(nil), p.Tags...)
	c.Likes = p.Likes.Clone()
	c.Replies = make([]Reply, len(p.Replies))
	for i, r := range p.Replies {
		c.Replies[i] = r.clone()
	}
	c.normalize()
	return &c
}
