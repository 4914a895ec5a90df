package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sungwon/ion-notify/internal/directory"
)

// DBTX is the subset of pgx used by Queries; both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries reads Ion's user and announcement tables. It implements
// directory.Directory.
type Queries struct {
	db                DBTX
	schoolEmailDomain string
}

var _ directory.Directory = (*Queries)(nil)

// New creates Queries over db. schoolEmailDomain derives each user's
// fallback address; pass "" to disable fallback addresses.
func New(db DBTX, schoolEmailDomain string) *Queries {
	return &Queries{db: db, schoolEmailDomain: schoolEmailDomain}
}

const userColumns = `
	u.id::bigint,
	u.username,
	u.first_name,
	u.last_name,
	u.receive_news_emails,
	ARRAY(SELECT e.address FROM users_email e WHERE e.user_id = u.id ORDER BY e.id) AS emails,
	ARRAY(SELECT ug.group_id::bigint FROM users_user_groups ug WHERE ug.user_id = u.id ORDER BY ug.group_id) AS group_ids
`

const getUserByID = `SELECT` + userColumns + `FROM users_user u WHERE u.id = $1`

const listUsersByID = `SELECT` + userColumns + `FROM users_user u WHERE u.id = ANY($1) ORDER BY u.id`

const listNewsEmailSubscribers = `SELECT` + userColumns + `FROM users_user u WHERE u.receive_news_emails ORDER BY u.id`

const getAnnouncement = `
SELECT a.id::bigint, a.title, a.content
FROM announcements_announcement a
WHERE a.id = $1`

const listAnnouncementGroups = `
SELECT g.id::bigint, g.name
FROM auth_group g
JOIN announcements_announcement_groups ag ON ag.group_id = g.id
WHERE ag.announcement_id = $1
ORDER BY g.id`

const getAnnouncementRequest = `
SELECT r.id::bigint, r.title, r.content, r.notes, COALESCE(r.user_id, 0)::bigint,
	ARRAY(
		SELECT t.user_id::bigint
		FROM announcements_announcementrequest_teachers_requested t
		WHERE t.announcementrequest_id = r.id
		ORDER BY t.user_id
	) AS teacher_ids
FROM announcements_announcementrequest r
WHERE r.id = $1`

func (q *Queries) UserByID(ctx context.Context, id int64) (*directory.User, error) {
	u, err := q.scanUser(q.db.QueryRow(ctx, getUserByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (q *Queries) UsersByID(ctx context.Context, ids []int64) ([]directory.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return q.listUsers(ctx, "list users by id", listUsersByID, ids)
}

func (q *Queries) NewsEmailSubscribers(ctx context.Context) ([]directory.User, error) {
	return q.listUsers(ctx, "list news email subscribers", listNewsEmailSubscribers)
}

func (q *Queries) Announcement(ctx context.Context, id int64) (*directory.Announcement, error) {
	var a directory.Announcement
	err := q.db.QueryRow(ctx, getAnnouncement, id).Scan(&a.ID, &a.Title, &a.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrNotFound
		}
		return nil, fmt.Errorf("get announcement %d: %w", id, err)
	}

	rows, err := q.db.Query(ctx, listAnnouncementGroups, id)
	if err != nil {
		return nil, fmt.Errorf("list groups of announcement %d: %w", id, err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (directory.Group, error) {
		var g directory.Group
		err := row.Scan(&g.ID, &g.Name)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan groups of announcement %d: %w", id, err)
	}
	a.Groups = groups

	return &a, nil
}

func (q *Queries) AnnouncementRequest(ctx context.Context, id int64) (*directory.AnnouncementRequest, error) {
	var r directory.AnnouncementRequest
	err := q.db.QueryRow(ctx, getAnnouncementRequest, id).Scan(
		&r.ID, &r.Title, &r.Content, &r.Notes, &r.AuthorID, &r.TeachersRequested,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrNotFound
		}
		return nil, fmt.Errorf("get announcement request %d: %w", id, err)
	}
	return &r, nil
}

func (q *Queries) listUsers(ctx context.Context, op, sql string, args ...any) ([]directory.User, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (directory.User, error) {
		return q.scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (q *Queries) scanUser(row pgx.Row) (directory.User, error) {
	var (
		u         directory.User
		firstName string
		lastName  string
	)
	if err := row.Scan(&u.ID, &u.Username, &firstName, &lastName, &u.ReceiveNewsEmails, &u.Emails, &u.Groups); err != nil {
		return directory.User{}, err
	}

	u.FullName = strings.TrimSpace(firstName + " " + lastName)
	if u.FullName == "" {
		u.FullName = u.Username
	}
	u.FallbackEmail = FallbackEmail(u.Username, q.schoolEmailDomain)
	return u, nil
}

// FallbackEmail builds the school-issued address for username, or "" when
// either part is missing.
func FallbackEmail(username, domain string) string {
	if username == "" || domain == "" {
		return ""
	}
	return username + "@" + domain
}
