package server

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/services"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}
	token, err := s.authService.Register(c.Request.Context(), services.RegisterCommand{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
		Details:  body.roleDetailsDTO.toDomain(domain.Role(body.Role)),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse{Token: token.String()})
}

func (s *Server) login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}
	token, err := s.authService.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token.String()})
}

func (s *Server) currentUser(c *gin.Context) {
	profile, err := s.profileService.ResolveIdentity(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}
