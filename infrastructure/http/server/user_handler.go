package server

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getProfile also tells the viewer whether they are connected to the owner.
func (s *Server) getProfile(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pathUserID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	profile, err := s.profileService.GetProfile(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	response := toProfileResponse(profile)
	if viewer := caller(c); viewer != id {
		connected, err := s.connectionService.AreConnected(ctx, viewer, id)
		if err != nil {
			s.writeError(c, err)
			return
		}
		response.Connected = &connected
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) updateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	var body updateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}
	current, err := s.profileService.ResolveIdentity(ctx, caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	profile, err := s.profileService.UpdateProfile(ctx, current.ID, body.toPatch(current.Role()))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (s *Server) searchProfiles(c *gin.Context) {
	profiles, err := s.profileService.SearchProfiles(c.Request.Context(), c.Query("q"), queryInt(c, "limit", s.searchLimit, s.searchLimit))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponses(profiles))
}

func (s *Server) listConnections(c *gin.Context) {
	profiles, err := s.connectionService.ConnectionProfiles(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponses(profiles))
}

func (s *Server) areConnected(c *gin.Context) {
	other, err := pathUserID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	connected, err := s.connectionService.AreConnected(c.Request.Context(), caller(c), other)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

func (s *Server) connect(c *gin.Context) {
	other, err := pathUserID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err = s.connectionService.Connect(c.Request.Context(), caller(c), other); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func (s *Server) disconnect(c *gin.Context) {
	other, err := pathUserID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err = s.connectionService.Disconnect(c.Request.Context(), caller(c), other); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": false})
}

// listUsers is the admin listing, optionally filtered with ?role=.
func (s *Server) listUsers(c *gin.Context) {
	profiles, err := s.profileService.ListProfiles(c.Request.Context(), caller(c), domain.Role(c.Query("role")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponses(profiles))
}
