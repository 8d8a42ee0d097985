package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mlozanov/storefront/internal/errs"
)

// authStatus is the machine-readable outcome reported on auth responses.
type authStatus string

const (
	statusLoginSuccess authStatus = "LOGIN_SUCCESS"
	statusLoginFailed  authStatus = "LOGIN_FAILED"
	statusUserCreated  authStatus = "USER_CREATED_SUCCESSFULLY"
	statusUserNotMade  authStatus = "USER_NOT_CREATED"
)

type authRequest struct {
	Name     string `json:"name,omitempty"`
	UserName string `json:"userName"`
	Password string `json:"password"`
	Mail     string `json:"mail,omitempty"`
}

type authResponse struct {
	Token   *string    `json:"token"`
	Status  authStatus `json:"status"`
	Message string     `json:"message"`
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[authRequest](w, r)
	if !ok {
		return
	}

	tok, err := s.auth.Login(r.Context(), req.UserName, req.Password, remoteIP(r))
	if err != nil {
		msg := "Login failed"
		switch {
		case errors.Is(err, errs.ErrBadCredentials):
			msg = "The username or password is incorrect"
		case errors.Is(err, errs.ErrUserNotFound):
			msg = "User not found"
		case errors.Is(err, errs.ErrRateLimited):
			msg = "Too many failed attempts, try again later"
		default:
			s.log.Error("login", zap.Error(err))
		}
		writeJSON(w, http.StatusUnauthorized, authResponse{Status: statusLoginFailed, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: &tok, Status: statusLoginSuccess, Message: "Login successful"})
}

// Register handles POST /api/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[authRequest](w, r)
	if !ok {
		return
	}

	tok, err := s.auth.SignUp(r.Context(), req.Name, req.UserName, req.Password, req.Mail)
	if err != nil {
		msg := "User not created"
		switch {
		case errors.Is(err, errs.ErrDuplicateUserName):
			msg = "The username is already in use"
		case errors.Is(err, errs.ErrDuplicateEmail):
			msg = "Email is already in use"
		default:
			s.log.Error("register", zap.Error(err))
		}
		writeJSON(w, http.StatusConflict, authResponse{Status: statusUserNotMade, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: &tok, Status: statusUserCreated, Message: "User registered successfully"})
}

func remoteIP(r *http.Request) string {
	return r.RemoteAddr
}
