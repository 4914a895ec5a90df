package announcements

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sungwon/ion-notify/internal/directory"
)

// ErrInvalidForm is returned when submitted form data cannot be used.
var ErrInvalidForm = errors.New("invalid form data")

// ResolveRecipients returns the preferred address of every opted-in user who
// should see a. Public announcements reach all opted-in users; restricted
// ones reach users sharing at least one group. Users without any address are
// skipped. Order follows users.
func ResolveRecipients(users []directory.User, a directory.Announcement) []string {
	groupIDs := a.GroupIDs()
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if !u.ReceiveNewsEmails {
			continue
		}
		if !a.IsPublic() && !u.InAnyGroup(groupIDs) {
			continue
		}
		if em := u.PreferredEmail(); em != "" {
			emails = append(emails, em)
		}
	}
	return emails
}

// TeacherIDs reads the "teachers_requested" form field, which holds either a
// single ID or a list of IDs given as numbers or numeric strings.
func TeacherIDs(form map[string]any) ([]int64, error) {
	raw, ok := form["teachers_requested"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: teachers_requested is required", ErrInvalidForm)
	}

	items, isList := raw.([]any)
	if !isList {
		items = []any{raw}
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := parseID(item)
		if err != nil {
			return nil, fmt.Errorf("%w: teachers_requested: %v", ErrInvalidForm, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(v any) (int64, error) {
	switch tv := v.(type) {
	case float64:
		if tv != float64(int64(tv)) {
			return 0, fmt.Errorf("%v is not an integer", tv)
		}
		return int64(tv), nil
	case json.Number:
		return tv.Int64()
	case int:
		return int64(tv), nil
	case int64:
		return tv, nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(tv), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", tv)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
