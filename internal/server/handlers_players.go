package server

import (
	"net/http"

	"photo-hunt/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createPlayerRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
	Name      string    `json:"name" binding:"required,playername"`
	Role      string    `json:"role" binding:"omitempty,role"`
}

var createPlayerMessages = bindMessages{
	"SessionID": {"required": "sessionId is required"},
	"Name": {
		"required":   "name is required",
		"playername": "name must be between 2 and 50 characters",
	},
	"Role": {"role": `role must be "admin" or "player"`},
}

func (s *Server) handleEnsureSession(c *gin.Context) {
	session, err := s.sessions.EnsureExists(c.Request.Context(), s.cfg.SessionName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleListPlayers(c *gin.Context) {
	sessionID, ok := queryID(c, "sessionId")
	if !ok {
		return
	}
	players, err := s.players.ListWithTeams(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (s *Server) handleCreatePlayer(c *gin.Context) {
	var req createPlayerRequest
	if !bindJSON(c, &req, createPlayerMessages, "invalid player") {
		return
	}
	role := req.Role
	if role == "" {
		role = string(game.RolePlayer)
	}
	ctx := c.Request.Context()
	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	player, err := s.players.Create(ctx, req.SessionID, req.Name, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (s *Server) handleDeletePlayers(c *gin.Context) {
	sessionID, ok := queryID(c, "sessionId")
	if !ok {
		return
	}
	removed, err := s.players.DeleteAll(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

func (s *Server) handleGetPlayer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	player, err := s.players.GetWithTeam(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := s.players.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleOpponents(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	opponents, err := s.players.Opponents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opponents)
}
