package models

// Post is a blog entry owned by exactly one user. UserID references the
// owning user and is the sole basis for edit/delete authorization.
type Post struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int    `json:"user_id"`
}
