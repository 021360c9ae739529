package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"dauvest/internal/auth"
	"dauvest/internal/core"
	"dauvest/internal/log"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to its status code. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	op := r.Method + " " + r.URL.Path

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error()})
	case errors.Is(err, core.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "sign in required"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case core.IsRemote(err):
		logger.LogError(ctx, "Community store failure", err, op, log.ErrorTypeRemote, nil)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		logger.LogError(ctx, "Request failed", err, op, log.ErrorTypeInternal, nil)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &core.ValidationError{Field: "body", Message: "is required"}
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &core.ValidationError{Field: "body", Message: "too large"}
		}
		return &core.ValidationError{Field: "body", Message: "is not valid JSON"}
	}
	return nil
}

func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.UserIDFromContext(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recordIdentity stores the caller's token email so their posts and comments
// resolve to it. A failed write is logged and the request carries on.
func (s *Server) recordIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			if err := s.social.RecordIdentity(r.Context(), id.UserID, id.Email); err != nil {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to record community identity",
					log.NewFields().WithUser(id.UserID).WithError(err).WithErrorType(log.ErrorTypeRemote).ToSlice()...)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// amountValue accepts an amount as a JSON number or string, with either
// decimal separator.
type amountValue string

func (a *amountValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unq
	}
	*a = amountValue(s)
	return nil
}

// queryInt reads a positive integer query parameter, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &core.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
