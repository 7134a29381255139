package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muneebexotic/portfolio-api/internal/form"
)

type contactResponse struct {
	OK      bool                  `json:"ok"`
	Message string                `json:"message,omitempty"`
	Errors  form.ValidationErrors `json:"errors,omitempty"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Server.MaxBodyKB * 1024
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(maxBytes)+1))
	r.Body.Close()
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	if len(body) > maxBytes {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	if s.cfg.Contact.Secret != "" {
		if !verifyHMAC(body, s.cfg.Contact.Secret, r.Header.Get("X-Signature")) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	sub, ok := s.parseSubmission(w, r, body)
	if !ok {
		return
	}

	clientID := form.ClientIdentifier(
		r.Header.Get("X-Forwarded-For"),
		r.Header.Get("X-Real-Ip"),
	)

	res := s.pipeline.Submit(r.Context(), sub, clientID)

	status := http.StatusOK
	switch res.Outcome {
	case form.OutcomeInvalid:
		status = http.StatusBadRequest
	case form.OutcomeRateLimited:
		status = http.StatusTooManyRequests
	case form.OutcomeSendFailed:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, contactResponse{
		OK:      res.OK(),
		Message: res.Message,
		Errors:  res.Errors,
	})
}

func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request, body []byte) (form.Submission, bool) {
	var sub form.Submission
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json") && s.cfg.Contact.AllowJSON:
		if err := json.Unmarshal(body, &sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return sub, false
		}
	case s.cfg.Contact.AllowForm:
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return sub, false
		}
		sub.Name = r.Form.Get("name")
		sub.Email = r.Form.Get("email")
		sub.Message = r.Form.Get("message")
		sub.Website = r.Form.Get("website")
	default:
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return sub, false
	}
	return sub, true
}

type limitResponse struct {
	Count     int        `json:"count"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"resetAt"`
}

// handleContactLimit reports the caller's current window without
// consuming budget, so the form can show a countdown.
func (s *Server) handleContactLimit(w http.ResponseWriter, r *http.Request) {
	clientID := form.ClientIdentifier(
		r.Header.Get("X-Forwarded-For"),
		r.Header.Get("X-Real-Ip"),
	)
	st, err := s.limiter.Status(r.Context(), clientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, contactResponse{
			OK:     false,
			Errors: form.ValidationErrors{form.FieldGeneral: "Something went wrong. Please try again later."},
		})
		return
	}
	resp := limitResponse{Count: st.Count, Remaining: st.Remaining}
	if !st.ResetAt.IsZero() {
		resp.ResetAt = &st.ResetAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func verifyHMAC(body []byte, secret, hexSig string) bool {
	if secret == "" || hexSig == "" {
		return false
	}
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(body)
	want := hex.EncodeToString(m.Sum(nil))
	return hmac.Equal([]byte(want), []byte(strings.ToLower(hexSig)))
}
