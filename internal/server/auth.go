package server

import (
	"net/http"

	"photo-hunt/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireAdmin loads the acting player and refuses anyone who is not an admin
// of sessionID.
func (s *Server) requireAdmin(c *gin.Context, playerID, sessionID uuid.UUID) (game.Player, bool) {
	player, err := s.players.Get(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return game.Player{}, false
	}
	if !player.Role.IsAdmin() || player.SessionID != sessionID {
		writeError(c, http.StatusForbidden, "only an admin of this session can perform this action")
		return game.Player{}, false
	}
	return player, true
}
