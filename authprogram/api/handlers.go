package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andrebq/chiefofstaff/authprogram"
	"github.com/andrebq/chiefofstaff/internal/logutil"
)

type (
	credentials struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName *string `json:"full_name"`
	}

	detail struct {
		Detail string `json:"detail"`
	}

	message struct {
		Message string `json:"message"`
	}
)

const maxBody = 1 << 20

func (s *Realm) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		if !readJSON(w, r, &in) {
			return
		}
		user, err := s.svc.Register(r.Context(), in.Email, in.Password, in.FullName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user.Public())
	}
}

func (s *Realm) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		if !readJSON(w, r, &in) {
			return
		}
		user, token, err := s.svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.setCookie(w, token)
		WriteJSON(w, http.StatusOK, user.Public())
	}
}

func (s *Realm) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.svc.Logout(r.Context(), user); err != nil {
			writeError(w, r, err)
			return
		}
		s.clearCookie(w)
		WriteJSON(w, http.StatusOK, message{Message: "Logged out"})
	}
}

func (s *Realm) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user.Public())
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

// WriteJSON sends body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteDetail sends an error message using the {"detail": ...} shape all
// endpoints share.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, detail{Detail: msg})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	var authErr authprogram.Error
	if !errors.As(err, &authErr) {
		log.Error().Err(err).Msg("Unable to complete auth request")
		WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	status := http.StatusInternalServerError
	switch authErr.Kind {
	case authprogram.AlreadyRegistered:
		status = http.StatusBadRequest
	case authprogram.InvalidCredentials, authprogram.NotAuthenticated, authprogram.InvalidSession:
		status = http.StatusUnauthorized
	case authprogram.InvalidInput:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unexpected auth error")
		WriteDetail(w, status, "Internal server error")
		return
	}
	log.Debug().Str("kind", authErr.Kind.String()).Msg("Auth request rejected")
	WriteDetail(w, status, authErr.Message)
}
