package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/announcements"
	"github.com/sungwon/ion-notify/internal/auth"
	"github.com/sungwon/ion-notify/internal/directory"
	"github.com/sungwon/ion-notify/internal/logger"
)

const maxBodyBytes = 1 << 20

// postedRequest selects which notifications to send. Both default to true.
type postedRequest struct {
	Email   *bool `json:"email"`
	Twitter *bool `json:"twitter"`
}

// approvalRequest carries the submitted announcement request form.
type approvalRequest struct {
	FormData map[string]any `json:"formdata"`
}

// dispatchResponse reports what a notification call did.
type dispatchResponse struct {
	Recipients []string              `json:"recipients"`
	MessageID  string                `json:"message_id,omitempty"`
	Tweeted    *bool                 `json:"tweeted,omitempty"`
	Notices    announcements.Notices `json:"notices"`
	Errors     []string              `json:"errors"`
}

func newDispatchResponse() *dispatchResponse {
	return &dispatchResponse{
		Recipients: []string{},
		Notices:    announcements.Notices{},
		Errors:     []string{},
	}
}

func (resp *dispatchResponse) addEmail(res *announcements.EmailResult) {
	if res == nil {
		return
	}
	if res.Recipients != nil {
		resp.Recipients = res.Recipients
	}
	if res.Message != nil && len(res.Recipients) > 0 {
		resp.MessageID = res.Message.ID
	}
}

// AnnouncementPostedHandler handles POST /api/v1/announcements/{id}/posted.
// The email and the tweet are attempted independently; a failure of either
// yields 502 with both outcomes in the body.
func AnnouncementPostedHandler(dir directory.Directory, disp *announcements.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req postedRequest
		if err := decodeOptionalBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		a, err := dir.Announcement(r.Context(), id)
		if err != nil {
			respondLookupError(w, "announcement", err)
			return
		}

		log := logger.FromContext(r.Context(), zerolog.Nop())
		resp := newDispatchResponse()

		if req.Email == nil || *req.Email {
			res, err := disp.AnnouncementPostedEmail(r.Context(), a)
			if err != nil {
				log.Error().Err(err).Int64("announcement_id", id).Msg("announcement email failed")
				resp.Errors = append(resp.Errors, err.Error())
			}
			resp.addEmail(res)
		}

		if req.Twitter == nil || *req.Twitter {
			tweeted, err := disp.AnnouncementPostedTwitter(r.Context(), a, &resp.Notices)
			if err != nil {
				log.Error().Err(err).Int64("announcement_id", id).Msg("announcement tweet failed")
				resp.Errors = append(resp.Errors, err.Error())
			}
			resp.Tweeted = &tweeted
		}

		status := http.StatusOK
		if len(resp.Errors) > 0 {
			status = http.StatusBadGateway
		}
		respondJSON(w, status, resp)
	}
}

// TeacherApprovalHandler handles
// POST /api/v1/announcement-requests/{id}/teacher-approval.
func TeacherApprovalHandler(dir directory.Directory, disp *announcements.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		form, ok := decodeForm(w, r)
		if !ok {
			return
		}

		req, err := dir.AnnouncementRequest(r.Context(), id)
		if err != nil {
			respondLookupError(w, "announcement request", err)
			return
		}

		actor, err := dir.UserByID(r.Context(), auth.ActorIDFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "acting user not found")
				return
			}
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}

		res, err := disp.RequestAnnouncementEmail(r.Context(), *actor, form, req)
		respondDispatch(w, res, err)
	}
}

// AdminApprovalHandler handles
// POST /api/v1/announcement-requests/{id}/admin-approval.
func AdminApprovalHandler(dir directory.Directory, disp *announcements.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		form, ok := decodeForm(w, r)
		if !ok {
			return
		}

		req, err := dir.AnnouncementRequest(r.Context(), id)
		if err != nil {
			respondLookupError(w, "announcement request", err)
			return
		}

		res, err := disp.AdminRequestAnnouncementEmail(r.Context(), form, req)
		respondDispatch(w, res, err)
	}
}

func respondDispatch(w http.ResponseWriter, res *announcements.EmailResult, err error) {
	if err != nil {
		if errors.Is(err, announcements.ErrInvalidForm) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	resp := newDispatchResponse()
	resp.addEmail(res)
	respondJSON(w, http.StatusOK, resp)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func respondLookupError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		respondError(w, http.StatusNotFound, what+" not found")
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

// decodeOptionalBody decodes a JSON body into v, treating an empty body as {}.
func decodeOptionalBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func decodeForm(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var req approvalRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if req.FormData == nil {
		respondError(w, http.StatusBadRequest, "formdata is required")
		return nil, false
	}
	return req.FormData, true
}
