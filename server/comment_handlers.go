package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postCommentBody struct {
	UserId string `json:"userId"`
	Text   string `json:"text"`
}

// POST /api/videos/:id/comments
func (s *Server) postComment(c *gin.Context) {
	var body postCommentBody
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, err, "Failed to post comment")
		return
	}
	actor, err := s.actor(c, body.UserId)
	if err != nil {
		respondError(c, err, "Failed to post comment")
		return
	}

	comment, err := s.Comments.PostComment(c.Request.Context(), c.Param("id"), actor, body.Text)
	if err != nil {
		respondError(c, err, "Failed to post comment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully", "comment": comment})
}

// GET /api/videos/:id/comments
func (s *Server) listComments(c *gin.Context) {
	comments, err := s.Comments.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}
