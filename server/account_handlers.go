package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/account"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

// POST /api/register
func (s *Server) register(c *gin.Context) {
	var input account.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.NewValidationError("Malformed request body"), "Registration failed")
		return
	}

	user, err := s.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// POST /api/login
func (s *Server) login(c *gin.Context) {
	var input account.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, utils.NewValidationError("Malformed request body"), "Login failed")
		return
	}

	res, err := s.Accounts.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/users/username/:username
func (s *Server) getUserByUsername(c *gin.Context) {
	user, err := s.Accounts.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/users/:id
func (s *Server) getUserById(c *gin.Context) {
	user, err := s.Accounts.GetById(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch user profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func optionalPostForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// PUT /api/users/:id, multipart form. :id may be a username or a user id.
func (s *Server) updateProfile(c *gin.Context) {
	patch := account.ProfilePatch{
		FirstName:   optionalPostForm(c, "firstName"),
		LastName:    optionalPostForm(c, "lastName"),
		Username:    optionalPostForm(c, "username"),
		Email:       optionalPostForm(c, "email"),
		Role:        optionalPostForm(c, "role"),
		DateOfBirth: optionalPostForm(c, "dateOfBirth"),
		Password:    optionalPostForm(c, "password"),
	}

	fileHeader, err := c.FormFile("profilePic")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, errors.Wrap(err, "open profile picture"), "Failed to update user profile")
			return
		}
		defer file.Close()
		patch.ProfilePic = &account.Upload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			File:        file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respondError(c, utils.NewValidationError("Malformed multipart form"), "Failed to update user profile")
		return
	}

	user, err := s.Accounts.UpdateProfile(c.Request.Context(), s.actorIdForOwnership(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, user)
}
