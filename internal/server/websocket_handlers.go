package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"reelhub/internal/models"
	"reelhub/internal/notifications"
	"reelhub/internal/observability"
	"reelhub/internal/search"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const wsWriteWait = 10 * time.Second

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Token    uint64            `json:"token"`
	Query    string            `json:"query"`
	Profiles []*models.Profile `json:"profiles"`
	Error    string            `json:"error,omitempty"`
}

// LiveSearchHandler handles profile search as the user types. Each text frame
// {"query": "..."} restarts the debounce window; only the latest query's
// results are written back.
func (s *Server) LiveSearchHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(s.shutdownCtx)
		defer cancel()

		var (
			writeMu sync.Mutex
			closed  bool
		)
		debouncer := search.NewDebouncer(s.rt.Profiles, s.config.SearchDebounce(), func(r search.Result) {
			resp := searchResponse{Token: r.Token, Query: r.Query, Profiles: r.Profiles}
			if r.Err != nil {
				if errors.Is(r.Err, context.Canceled) {
					return
				}
				observability.GlobalLogger.WarnContext(ctx, "live search failed", "query", r.Query, "error", r.Err.Error())
				resp.Error = "search failed"
			}
			if resp.Profiles == nil {
				resp.Profiles = []*models.Profile{}
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			if closed {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(resp); err != nil {
				observability.GlobalLogger.DebugContext(ctx, "live search write failed", "error", err.Error())
			}
		})
		defer func() {
			debouncer.Close()
			writeMu.Lock()
			closed = true
			writeMu.Unlock()
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req searchRequest
			if err := json.Unmarshal(message, &req); err != nil {
				continue
			}
			debouncer.Submit(ctx, req.Query)
		}
	})
}

// NotificationsHandler streams the viewer's like, comment and follow
// notifications. The route requires a session.
func (s *Server) NotificationsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.rt.Hub.Register(userID, conn)
		if err != nil {
			observability.GlobalLogger.Warn("notification socket rejected", "user_id", userID, "error", err.Error())
			reason := "server_full"
			if errors.Is(err, notifications.ErrUserFull) {
				reason = "too_many_connections"
			}
			msg, _ := json.Marshal(fiber.Map{"error": reason})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}
		observability.GlobalLogger.Debug("notification socket connected", "user_id", userID)

		go client.WritePump()
		client.ReadPump()
	})
}
