package server

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/engagement"
	"github.com/murtaza309/streemza/server/middlewares"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

// bindOptionalJSON decodes the request body into obj. An empty body leaves obj
// untouched.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return utils.NewValidationError("Malformed request body")
	}
	return nil
}

// actor decides who performs the request. With BypassAuth it is whoever the
// body names. Otherwise it is the verified token's user, and a body userId
// naming anybody else is rejected.
func (s *Server) actor(c *gin.Context, bodyUserId string) (engagement.Actor, error) {
	if s.BypassAuth {
		return engagement.Actor{UserId: bodyUserId}, nil
	}
	authId := middlewares.GetActorId(c)
	if bodyUserId != "" && bodyUserId != authId {
		return engagement.Actor{}, utils.ErrActorMismatch
	}
	return engagement.Actor{UserId: authId}, nil
}

// actorIdForOwnership is the id a resource owner must match, empty when
// ownership is not enforced.
func (s *Server) actorIdForOwnership(c *gin.Context) string {
	if s.BypassAuth {
		return ""
	}
	return middlewares.GetActorId(c)
}
