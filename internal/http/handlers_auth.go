package http

import (
	"net/http"

	"github.com/sindhu2707/expense-tracker/internal/log"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}

	session, err := s.deps.Accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, log.OpSignup, "")
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Message("Account created!",
			"token", session.Token,
			"user", map[string]any{"id": session.User.ID, "email": session.User.Email}).
		Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}

	session, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, log.OpLogin, "")
		return
	}

	NewJSONResponse().
		Message("Logged in!", "token", session.Token, "user", newUserResponse(session.User)).
		Write(w)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := s.deps.Accounts.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpRead, "User not found")
		return
	}
	NewJSONResponse().Body(newUserResponse(user)).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}

	user, err := s.deps.Accounts.UpdateProfile(r.Context(), userID, sanitizeInput(req.Username))
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate, "User not found")
		return
	}
	NewJSONResponse().Body(newUserResponse(user)).Write(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}

	if err := s.deps.Accounts.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err, log.OpUpdate, "User not found")
		return
	}
	NewJSONResponse().Message("Password updated").Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := s.deps.Accounts.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, r, err, log.OpDelete, "User not found")
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "Account deleted")
	NewJSONResponse().Message("Account deleted").Write(w)
}
