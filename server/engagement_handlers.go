package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type userIdBody struct {
	UserId string `json:"userId"`
}

// POST /api/videos/:id/like
func (s *Server) like(c *gin.Context) {
	var body userIdBody
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, err, "Failed to like video")
		return
	}
	actor, err := s.actor(c, body.UserId)
	if err != nil {
		respondError(c, err, "Failed to like video")
		return
	}

	count, err := s.Engagement.Like(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err, "Failed to like video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Liked the video", "likesCount": count})
}

// POST /api/videos/:id/unlike
func (s *Server) unlike(c *gin.Context) {
	var body userIdBody
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, err, "Failed to unlike video")
		return
	}
	actor, err := s.actor(c, body.UserId)
	if err != nil {
		respondError(c, err, "Failed to unlike video")
		return
	}

	count, err := s.Engagement.Unlike(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err, "Failed to unlike video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unliked the video", "unlikesCount": count})
}

// POST /api/subscribe/:username
func (s *Server) subscribe(c *gin.Context) {
	var body userIdBody
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, err, "Subscription failed")
		return
	}
	actor, err := s.actor(c, body.UserId)
	if err != nil {
		respondError(c, err, "Subscription failed")
		return
	}

	if _, err := s.Engagement.Subscribe(c.Request.Context(), c.Param("username"), actor); err != nil {
		respondError(c, err, "Subscription failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed successfully"})
}

// PUT /api/videos/views/:id
func (s *Server) registerView(c *gin.Context) {
	views, err := s.Engagement.RegisterView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update views")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "View count updated", "views": views})
}
