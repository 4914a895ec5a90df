package announcements

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Links builds absolute URLs into the Ion site.
type Links struct {
	base string
}

// NewLinks validates baseURL, which must be an absolute http(s) URL.
func NewLinks(baseURL string) (Links, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Links{}, fmt.Errorf("parse site base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Links{}, fmt.Errorf("site base url %q must be an absolute http(s) URL", baseURL)
	}
	return Links{base: strings.TrimRight(u.String(), "/")}, nil
}

// Index is the site root, always with a trailing slash.
func (l Links) Index() string {
	return l.base + "/"
}

// Announcement links to the public view of an announcement.
func (l Links) Announcement(id int64) string {
	return l.base + "/announcements/" + strconv.FormatInt(id, 10)
}

// ApproveRequest links to the teacher approval page of a request.
func (l Links) ApproveRequest(id int64) string {
	return l.base + "/announcements/request/" + strconv.FormatInt(id, 10)
}

// AdminApprove links to the administrator approval page of a request.
func (l Links) AdminApprove(id int64) string {
	return l.base + "/announcements/approve/" + strconv.FormatInt(id, 10)
}
