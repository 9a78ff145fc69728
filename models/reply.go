package models

import "time"

// Attachment is an opaque file reference carried on a reply.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
}

// Reply is an answer inside a post. It has no lifecycle outside its parent.
type Reply struct {
	ID          string       `json:"id"`
	AuthorID    string       `json:"author"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	Likes       LikeSet      `json:"likes"`
	IsSolution  bool         `json:"isSolution"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func (r *Reply) normalize() {
	if r.Attachments == nil {
		r.Attachments = []Attachment{}
	}
	if r.Likes == nil {
		r.Likes = LikeSet{}
	}
}

func (r Reply) clone() Reply {
	r.Attachments = append([]Attachment(nil), r.Attachments...)
	r.Likes = r.Likes.Clone()
	r.normalize()
	return r
}
