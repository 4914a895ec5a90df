// Package directory describes the read-only view of Ion's users, groups and
// announcements that the notification dispatcher works from.
package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("directory: not found")

// Group is a recipient group an announcement can be restricted to.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is an Ion user as seen by the notification dispatcher.
type User struct {
	ID       int64
	Username string
	FullName string
	// Emails holds the user's personal addresses in preference order.
	Emails []string
	// FallbackEmail is the school-issued address; empty when unknown.
	FallbackEmail     string
	Groups            []int64
	ReceiveNewsEmails bool
}

// PreferredEmail returns the first personal address, then the fallback
// address, then "".
func (u User) PreferredEmail() string {
	if len(u.Emails) > 0 && u.Emails[0] != "" {
		return u.Emails[0]
	}
	return u.FallbackEmail
}

// InAnyGroup reports whether the user belongs to at least one of groupIDs.
func (u User) InAnyGroup(groupIDs []int64) bool {
	for _, g := range u.Groups {
		for _, want := range groupIDs {
			if g == want {
				return true
			}
		}
	}
	return false
}

// Announcement is a published news post.
type Announcement struct {
	ID      int64
	Title   string
	Content string
	Groups  []Group
}

// IsPublic reports whether the announcement is visible to everyone.
func (a Announcement) IsPublic() bool {
	return len(a.Groups) == 0
}

// GroupIDs returns the IDs of the groups the announcement is restricted to.
func (a Announcement) GroupIDs() []int64 {
	ids := make([]int64, len(a.Groups))
	for i, g := range a.Groups {
		ids[i] = g.ID
	}
	return ids
}

// AnnouncementRequest is a submitted news post awaiting approval.
type AnnouncementRequest struct {
	ID                int64
	Title             string
	Content           string
	Notes             string
	AuthorID          int64
	TeachersRequested []int64
}

// Directory is the read-only lookup surface the dispatcher needs.
type Directory interface {
	UserByID(ctx context.Context, id int64) (*User, error)
	// UsersByID returns the users that exist among ids, ordered by ID.
	UsersByID(ctx context.Context, ids []int64) ([]User, error)
	// NewsEmailSubscribers returns every user opted into news emails, ordered by ID.
	NewsEmailSubscribers(ctx context.Context) ([]User, error)
	Announcement(ctx context.Context, id int64) (*Announcement, error)
	AnnouncementRequest(ctx context.Context, id int64) (*AnnouncementRequest, error)
}
