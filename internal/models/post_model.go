package models

import "time"

type PostStatus string

const (
	PostStatusDraft           PostStatus = "draft"
	PostStatusPendingApproval PostStatus = "pending_approval"
	PostStatusApproved        PostStatus = "approved" // staff approved
	PostStatusRejected        PostStatus = "rejected" // staff rejected
	PostStatusFinished        PostStatus = "finished"
	PostStatusClientApproved  PostStatus = "client_approved"
	PostStatusClientRejected  PostStatus = "client_rejected"
)

var PostStatuses = []PostStatus{
	PostStatusDraft,
	PostStatusPendingApproval,
	PostStatusApproved,
	PostStatusRejected,
	PostStatusFinished,
	PostStatusClientApproved,
	PostStatusClientRejected,
}

func (s PostStatus) Valid() bool {
	for _, v := range PostStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions or edits.
func (s PostStatus) Terminal() bool {
	return s == PostStatusRejected || s == PostStatusClientApproved || s == PostStatusClientRejected
}

// Scheduled reports whether a post in this status holds a calendar slot.
func (s PostStatus) Scheduled() bool {
	return s == PostStatusApproved || s == PostStatusFinished || s == PostStatusClientApproved
}

type PostType string

const (
	PostTypeFeed     PostType = "feed"
	PostTypeStory    PostType = "story"
	PostTypeReel     PostType = "reel"
	PostTypeVideo    PostType = "video"
	PostTypeCarousel PostType = "carousel"
)

var PostTypes = []PostType{PostTypeFeed, PostTypeStory, PostTypeReel, PostTypeVideo, PostTypeCarousel}

// Content fields are optional until a transition requires them.
type Content struct {
	Script    string `db:"script" json:"script"`
	Caption   string `db:"caption" json:"caption"`
	AssetLink string `db:"asset_link" json:"asset_link"`
}

type ContentField string

const (
	FieldScript    ContentField = "script"
	FieldCaption   ContentField = "caption"
	FieldAssetLink ContentField = "asset_link"
)

var ContentFields = []ContentField{FieldScript, FieldCaption, FieldAssetLink}

// ContentPatch carries the fields a caller wants to change; nil means untouched.
type ContentPatch struct {
	Script    *string `json:"script,omitempty"`
	Caption   *string `json:"caption,omitempty"`
	AssetLink *string `json:"asset_link,omitempty"`
}

func (p ContentPatch) Fields() []ContentField {
	var fields []ContentField
	if p.Script != nil {
		fields = append(fields, FieldScript)
	}
	if p.Caption != nil {
		fields = append(fields, FieldCaption)
	}
	if p.AssetLink != nil {
		fields = append(fields, FieldAssetLink)
	}
	return fields
}

func (p ContentPatch) Apply(c *Content) {
	if p.Script != nil {
		c.Script = *p.Script
	}
	if p.Caption != nil {
		c.Caption = *p.Caption
	}
	if p.AssetLink != nil {
		c.AssetLink = *p.AssetLink
	}
}

type Post struct {
	ID          int64      `db:"id" json:"id"`
	ClientID    int64      `db:"client_id" json:"client_id"`
	Type        PostType   `db:"post_type" json:"type"`
	Pillar      string     `db:"pillar" json:"pillar"`
	Status      PostStatus `db:"status" json:"status"`
	Content     Content    `json:"content"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at"`
	CreatedBy   int64      `db:"created_by" json:"created_by"`
	Version     int64      `db:"version" json:"version"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Post) Clone() *Post {
	cp := *p
	if p.ScheduledAt != nil {
		t := *p.ScheduledAt
		cp.ScheduledAt = &t
	}
	return &cp
}

// PostSummary is the calendar view of a post.
type PostSummary struct {
	ID       int64      `json:"id"`
	ClientID int64      `json:"client_id"`
	Type     PostType   `json:"type"`
	Pillar   string     `json:"pillar"`
	Status   PostStatus `json:"status"`
}

type PostHistory struct {
	ID          int64      `db:"id" json:"id"`
	PostID      int64      `db:"post_id" json:"post_id"`
	ClientID    int64      `db:"client_id" json:"client_id"`
	ActorID     int64      `db:"actor_id" json:"actor_id"`
	FromStatus  PostStatus `db:"from_status" json:"from_status"`
	ToStatus    PostStatus `db:"to_status" json:"to_status"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
