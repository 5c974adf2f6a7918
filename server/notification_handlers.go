package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/utils"
	Logger "github.com/murtaza309/streemza/utils/log"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// recipient resolves username and makes sure the caller may read their
// notifications.
func (s *Server) recipient(c *gin.Context) (*model.User, error) {
	user, err := s.Accounts.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		return nil, err
	}
	if owner := s.actorIdForOwnership(c); owner != "" && owner != user.Id {
		return nil, utils.ErrActorMismatch
	}
	return user, nil
}

// GET /api/notifications/:username
func (s *Server) listNotifications(c *gin.Context) {
	user, err := s.recipient(c)
	if err != nil {
		respondError(c, err, "Failed to load notifications")
		return
	}

	notifications, err := s.Notifications.ListForUser(c.Request.Context(), user.Username)
	if err != nil {
		respondError(c, err, "Failed to load notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// GET /api/notifications/:username/live
//
// Upgrades to a websocket and streams every notification of the user created
// from now on as a JSON text message. The stream carries no history; clients
// list notifications first and then follow the stream.
func (s *Server) liveNotifications(c *gin.Context) {
	user, err := s.recipient(c)
	if err != nil {
		respondError(c, err, "Failed to open notification stream")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		Logger.Log.Warnf("fail to upgrade notification stream of %s: %v", user.Username, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	ch, chId := s.Live.AddNewConnection(ctx, user.Id)
	Logger.Log.Infof("user %s opened notification stream %s", user.Username, chId)

	// The client never sends anything meaningful; reading only detects close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(n); err != nil {
				Logger.Log.Infof("notification stream %s closed: %v", chId, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
