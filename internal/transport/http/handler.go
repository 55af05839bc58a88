package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
	httpmw "github.com/Emmymoks/swift-emc-marketplace/internal/transport/http/middleware"
	"github.com/Emmymoks/swift-emc-marketplace/pkg/errs"

	"github.com/go-chi/chi/v5"
)

// ChatSvc — операции ядра сообщений, которые смотрят в HTTP.
type ChatSvc interface {
	Send(ctx context.Context, p domain.Principal, roomID string, recipientID *string, text string, listingID *string) (*domain.Message, error)
	AdminSend(ctx context.Context, roomID string, toID *string, text string) (*domain.Message, error)
	History(ctx context.Context, p domain.Principal, roomID string) ([]domain.Message, error)
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	DeleteMessage(ctx context.Context, p domain.Principal, messageID string) error
	DeleteRoom(ctx context.Context, p domain.Principal, roomID string) error
	AdminMessages(ctx context.Context, roomID, userID string) ([]domain.Message, error)
	AdminRecentRooms(ctx context.Context, limit int) ([]domain.RoomSummary, error)
}

type Handler struct {
	chatSvc ChatSvc
}

func NewHandler(chat ChatSvc) *Handler {
	return &Handler{chatSvc: chat}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError мапит доменную ошибку в статус; 401 — ожидаемый трафик,
// его не логируем, 5xx логируем как ошибку.
func writeError(w http.ResponseWriter, op string, err error) {
	status := errs.ToHTTP(err)
	if status >= http.StatusInternalServerError {
		slog.Error("handler."+op, slog.Any("err", err))
		writeJSON(w, status, ErrorResponse{Error: "server error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// POST /api/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	p := httpmw.PrincipalFromCtx(r.Context())
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	msg, err := h.chatSvc.Send(r.Context(), p, req.RoomID, req.ToID, req.Text, req.Listing)
	if err != nil {
		writeError(w, "SendMessage", err)
		return
	}
	writeJSON(w, http.StatusOK, SendMessageResponse{Msg: newMessageItem(msg)})
}

// GET /api/messages/{roomID}
func (h *Handler) RoomHistory(w http.ResponseWriter, r *http.Request) {
	p := httpmw.PrincipalFromCtx(r.Context())
	roomID := pathParam(r, "roomID")

	msgs, err := h.chatSvc.History(r.Context(), p, roomID)
	if err != nil {
		writeError(w, "RoomHistory", err)
		return
	}
	resp := HistoryResponse{Msgs: make([]MessageItem, 0, len(msgs))}
	for i := range msgs {
		resp.Msgs = append(resp.Msgs, newMessageItem(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/messages/conversations/list
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	p := httpmw.PrincipalFromCtx(r.Context())
	uid, ok := p.UserID()
	if !ok {
		writeError(w, "Conversations", domain.ErrUnauthenticated)
		return
	}

	convs, err := h.chatSvc.Conversations(r.Context(), uid)
	if err != nil {
		writeError(w, "Conversations", err)
		return
	}
	resp := ConversationsResponse{Conversations: make([]ConversationItem, 0, len(convs))}
	for _, c := range convs {
		resp.Conversations = append(resp.Conversations, ConversationItem{
			RoomID:      c.RoomID,
			Partner:     c.PartnerID,
			LastMessage: c.LastMessage,
			At:          c.At,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DELETE /api/messages/{messageID}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	p := httpmw.PrincipalFromCtx(r.Context())
	if err := h.chatSvc.DeleteMessage(r.Context(), p, chi.URLParam(r, "messageID")); err != nil {
		writeError(w, "DeleteMessage", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{OK: true})
}

// DELETE /api/messages/conversations/{roomID}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	p := httpmw.PrincipalFromCtx(r.Context())
	if err := h.chatSvc.DeleteRoom(r.Context(), p, pathParam(r, "roomID")); err != nil {
		writeError(w, "DeleteRoom", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{OK: true})
}

// POST /api/admin/messages/reply
func (h *Handler) AdminReply(w http.ResponseWriter, r *http.Request) {
	var req AdminReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	msg, err := h.chatSvc.AdminSend(r.Context(), req.RoomID, req.ToID, req.Text)
	if err != nil {
		writeError(w, "AdminReply", err)
		return
	}
	writeJSON(w, http.StatusOK, SendMessageResponse{Msg: newMessageItem(msg)})
}

// GET /api/admin/messages?roomId=&userId=
func (h *Handler) AdminMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msgs, err := h.chatSvc.AdminMessages(r.Context(), q.Get("roomId"), q.Get("userId"))
	if err != nil {
		writeError(w, "AdminMessages", err)
		return
	}
	resp := HistoryResponse{Msgs: make([]MessageItem, 0, len(msgs))}
	for i := range msgs {
		resp.Msgs = append(resp.Msgs, newMessageItem(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/admin/recent-messages?limit=
func (h *Handler) AdminRecentRooms(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	rooms, err := h.chatSvc.AdminRecentRooms(r.Context(), limit)
	if err != nil {
		writeError(w, "AdminRecentRooms", err)
		return
	}
	resp := RecentRoomsResponse{Rooms: make([]RoomSummaryItem, 0, len(rooms))}
	for i := range rooms {
		resp.Rooms = append(resp.Rooms, RoomSummaryItem{
			RoomID:      rooms[i].RoomID,
			LastMessage: newMessageItem(&rooms[i].LastMessage),
			Count:       rooms[i].Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// pathParam декодирует URL-параметр: room id вида user:a_b приходит
// percent-encoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if dec, err := url.PathUnescape(raw); err == nil {
		return dec
	}
	return raw
}
