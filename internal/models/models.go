package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash and is
// never rendered.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	JoinedAt     time.Time `json:"joined_at" db:"joined_at"`
}

// Group is a named community posts may be tagged with.
type Group struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
}

// Post is an authored text entry, optionally tagged to a group and
// optionally carrying an uploaded image (media-relative path).
type Post struct {
	ID       int64     `json:"id" db:"id"`
	Text     string    `json:"text" db:"text"`
	PubDate  time.Time `json:"pub_date" db:"pub_date"`
	AuthorID int64     `json:"author_id" db:"author_id"`
	GroupID  *int64    `json:"group_id,omitempty" db:"group_id"`
	Image    string    `json:"image,omitempty" db:"image"`

	// Joined relations, populated by list/detail queries.
	Author *User  `json:"author,omitempty" db:"-"`
	Group  *Group `json:"group,omitempty" db:"-"`
}

// Comment belongs to exactly one post.
type Comment struct {
	ID       int64     `json:"id" db:"id"`
	PostID   int64     `json:"post_id" db:"post_id"`
	AuthorID int64     `json:"author_id" db:"author_id"`
	Text     string    `json:"text" db:"text"`
	Created  time.Time `json:"created" db:"created"`

	Author *User `json:"author,omitempty" db:"-"`
}

// Follow is a directed subscription: UserID follows AuthorID.
// The (user, author) pair is unique at the storage layer; self-follow
// is rejected at the handler layer only.
type Follow struct {
	ID       int64 `json:"id" db:"id"`
	UserID   int64 `json:"user_id" db:"user_id"`
	AuthorID int64 `json:"author_id" db:"author_id"`
}
