package http

import (
	"net/http"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/security"
	httpmw "github.com/Emmymoks/swift-emc-marketplace/internal/transport/http/middleware"
	"github.com/Emmymoks/swift-emc-marketplace/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, resolver *security.Resolver, wsServer *ws.Server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(httpmw.Metrics)
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Secret"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS endpoint: аутентификация через query-параметры при upgrade
	r.Get("/ws", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.Auth(resolver))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/api/messages", func(rm chi.Router) {
			rm.Post("/", h.SendMessage)
			rm.Get("/conversations/list", h.Conversations)
			rm.Delete("/conversations/{roomID}", h.DeleteRoom)
			rm.Get("/{roomID}", h.RoomHistory)
			rm.Delete("/{messageID}", h.DeleteMessage)
		})

		pr.Route("/api/admin", func(ra chi.Router) {
			ra.Use(httpmw.AdminOnly)
			ra.Post("/messages/reply", h.AdminReply)
			ra.Get("/messages", h.AdminMessages)
			ra.Get("/recent-messages", h.AdminRecentRooms)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
