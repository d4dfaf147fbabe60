package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type startChatRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Support    bool   `json:"support"`
}

func (s *Server) handleStartChat(w http.ResponseWriter, r *http.Request) {
	var req startChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "receiver_id is required"})
		return
	}
	if !s.allow(r, "start_chat", 20, time.Hour) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many new chats"})
		return
	}

	chat, chatReq, err := s.chatUC.StartChat(r.Context(), userID(r), req.ReceiverID, req.Support)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{
		"chat_id":  chat.ID,
		"accepted": chat.IsAccepted,
	}
	if chatReq != nil {
		resp["request_id"] = chatReq.ID
		resp["request_status"] = string(chatReq.Status)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	list, err := s.chatUC.ListChats(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListChatRequests(w http.ResponseWriter, r *http.Request) {
	list, err := s.chatUC.ListRequests(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.chatUC.Accept(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.chatUC.Reject(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content must be 1-4000 characters"})
		return
	}
	if !s.allow(r, "send_message", 60, time.Minute) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "slow down"})
		return
	}

	msg, err := s.chatUC.SendMessage(r.Context(), chi.URLParam(r, "id"), userID(r), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	msgs, err := s.chatUC.ListMessages(r.Context(), chi.URLParam(r, "id"), userID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.chatUC.MarkRead(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	sum, err := s.chatUC.UnreadCount(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
