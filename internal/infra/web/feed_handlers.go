package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	posts, err := s.feedUC.ListFeed(r.Context(), userID(r), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type createPostRequest struct {
	AuthorID  string     `json:"author_id" validate:"required"`
	Title     string     `json:"title" validate:"required,max=200"`
	Body      string     `json:"body"`
	VIPOnly   bool       `json:"vip_only"`
	PublishAt *time.Time `json:"publish_at,omitempty"`
}

func (s *Server) handleAdminCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "author_id and title are required"})
		return
	}
	post, err := s.feedUC.CreatePost(r.Context(), req.AuthorID, req.Title, req.Body, req.VIPOnly, req.PublishAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleAdminGrantVIP(w http.ResponseWriter, r *http.Request) {
	if err := s.userUC.GrantVIP(r.Context(), chi.URLParam(r, "id"), "admin-api"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	users, err := s.userUC.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := s.userUC.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"users": users,
	})
}
