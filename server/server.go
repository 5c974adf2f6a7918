// Package server exposes the engagement, comment, notification, account and
// catalog operations over HTTP with gin.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/murtaza309/streemza/account"
	"github.com/murtaza309/streemza/catalog"
	"github.com/murtaza309/streemza/comment"
	"github.com/murtaza309/streemza/engagement"
	"github.com/murtaza309/streemza/live"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/server/middlewares"
)

type Server struct {
	Engagement    *engagement.Engine
	Comments      *comment.Service
	Notifications *notification.Fanout
	Accounts      *account.Accounts
	Catalog       *catalog.Catalog
	Live          *live.SignalChannels
	Tokens        middlewares.TokenVerifier

	// BypassAuth trusts the userId sent in request bodies. Without it the
	// acting user comes from the verified JWT.
	BypassAuth bool

	upgrader websocket.Upgrader
}

// SetAllowedOrigins restricts which origins may open a live notification
// websocket. Empty allows every origin.
func (s *Server) SetAllowedOrigins(origins []string) {
	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		if len(origins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, o := range origins {
			if o == origin {
				return true
			}
		}
		return false
	}
}

func (s *Server) authenticated() []gin.HandlerFunc {
	if s.BypassAuth {
		return nil
	}
	return []gin.HandlerFunc{middlewares.JWT(s.Tokens)}
}

// RegisterRoutes mounts every API route on router.
func (s *Server) RegisterRoutes(router gin.IRouter) {
	if s.upgrader.CheckOrigin == nil {
		s.SetAllowedOrigins(nil)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.GET("/genres", s.listGenres)
	api.GET("/users/username/:username", s.getUserByUsername)
	api.GET("/users/:id", s.getUserById)
	api.GET("/videos", s.listVideos)
	api.GET("/videos/:id", s.getVideo)
	api.GET("/videos/:id/comments", s.listComments)
	// Views are anonymous.
	api.PUT("/videos/views/:id", s.registerView)

	auth := api.Group("", s.authenticated()...)
	auth.PUT("/users/:id", s.updateProfile)
	auth.POST("/videos/upload", s.uploadVideo)
	auth.POST("/videos/:id/like", s.like)
	auth.POST("/videos/:id/unlike", s.unlike)
	auth.POST("/videos/:id/comments", s.postComment)
	auth.POST("/subscribe/:username", s.subscribe)
	auth.GET("/notifications/:username", s.listNotifications)
	auth.GET("/notifications/:username/live", s.liveNotifications)
}
