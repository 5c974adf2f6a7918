package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/catalog"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

// GET /api/genres
func (s *Server) listGenres(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Genres())
}

// GET /api/videos
func (s *Server) listVideos(c *gin.Context) {
	videos, err := s.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch videos")
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GET /api/videos/:id
func (s *Server) getVideo(c *gin.Context) {
	video, err := s.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch video")
		return
	}
	c.JSON(http.StatusOK, video)
}

// POST /api/videos/upload, multipart form with the file in "video".
func (s *Server) uploadVideo(c *gin.Context) {
	actor, err := s.actor(c, c.PostForm("creatorId"))
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}

	input := catalog.UploadInput{
		Title:     c.PostForm("title"),
		Publisher: c.PostForm("publisher"),
		Genre:     c.PostForm("genre"),
		AgeRating: c.PostForm("ageRating"),
		CreatorId: actor.UserId,
	}

	fileHeader, err := c.FormFile("video")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, errors.Wrap(err, "open uploaded video"), "Upload failed")
			return
		}
		defer file.Close()
		input.FileName = fileHeader.Filename
		input.ContentType = fileHeader.Header.Get("Content-Type")
		input.File = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Upload reports the missing file.
	default:
		respondError(c, utils.NewValidationError("Malformed multipart form"), "Upload failed")
		return
	}

	video, err := s.Catalog.Upload(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Video uploaded successfully", "video": video})
}
