package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createTeamRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
}

type renameTeamRequest struct {
	Name string `json:"name" binding:"required,teamname"`
}

type assignRequest struct {
	PlayerID uuid.UUID `json:"playerId" binding:"required"`
	TeamID   uuid.UUID `json:"teamId" binding:"required"`
}

type unassignRequest struct {
	PlayerID uuid.UUID `json:"playerId" binding:"required"`
}

type resetPointsRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
	AdminID   uuid.UUID `json:"adminId" binding:"required"`
}

var teamMessages = bindMessages{
	"SessionID": {"required": "sessionId is required"},
	"PlayerID":  {"required": "playerId is required"},
	"TeamID":    {"required": "teamId is required"},
	"AdminID":   {"required": "adminId is required"},
	"Name": {
		"required": "name is required",
		"teamname": "name must be between 1 and 50 characters",
	},
}

func (s *Server) handleListTeams(c *gin.Context) {
	sessionID, ok := queryID(c, "sessionId")
	if !ok {
		return
	}
	teams, err := s.teams.ListWithPlayers(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (s *Server) handleCreateTeam(c *gin.Context) {
	var req createTeamRequest
	if !bindJSON(c, &req, teamMessages, "invalid team") {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	team, err := s.teams.Create(ctx, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (s *Server) handleDeleteTeams(c *gin.Context) {
	sessionID, ok := queryID(c, "sessionId")
	if !ok {
		return
	}
	removed, err := s.teams.DeleteAll(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

func (s *Server) handleRenameTeam(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req renameTeamRequest
	if !bindJSON(c, &req, teamMessages, "invalid team name") {
		return
	}
	team, err := s.teams.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := s.teams.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAssign(c *gin.Context) {
	var req assignRequest
	if !bindJSON(c, &req, teamMessages, "invalid assignment") {
		return
	}
	ctx := c.Request.Context()
	if err := s.teams.Assign(ctx, req.PlayerID, req.TeamID); err != nil {
		respondError(c, err)
		return
	}
	player, err := s.players.GetWithTeam(ctx, req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (s *Server) handleUnassign(c *gin.Context) {
	var req unassignRequest
	if !bindJSON(c, &req, teamMessages, "invalid assignment") {
		return
	}
	removed, err := s.teams.Unassign(c.Request.Context(), req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) handleResetPoints(c *gin.Context) {
	var req resetPointsRequest
	if !bindJSON(c, &req, teamMessages, "invalid reset") {
		return
	}
	if _, ok := s.requireAdmin(c, req.AdminID, req.SessionID); !ok {
		return
	}
	if err := s.teams.ResetAllPoints(c.Request.Context(), req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
