package server

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) sendMessage(c *gin.Context) {
	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}
	receiver, err := domain.ParseUserID(body.ReceiverID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	message, err := s.messagingService.SendMessage(c.Request.Context(), caller(c), receiver, body.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(message))
}

// markRead marks what :userId sent to the caller as read.
func (s *Server) markRead(c *gin.Context) {
	sender, err := pathUserID(c, "userId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	flipped, err := s.messagingService.MarkRead(c.Request.Context(), sender, caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": flipped})
}

func (s *Server) messagesWith(c *gin.Context) {
	other, err := pathUserID(c, "userId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	messages, err := s.messagingService.MessagesBetween(c.Request.Context(), caller(c), other)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(messages))
}

func (s *Server) conversations(c *gin.Context) {
	views, err := s.messagingService.ConversationsFor(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationResponses(views))
}

func (s *Server) unreadTotal(c *gin.Context) {
	total, err := s.messagingService.UnreadTotal(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total})
}
