package handlers

import (
	"net/http"

	"quizroom/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// GetRoom returns a read-only snapshot of a room by code.
func (h *GameHandler) GetRoom(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room code required"})
		return
	}

	snapshot, err := h.gameService.RoomSnapshot(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetQuestionCount reports how many questions a full game runs through.
func (h *GameHandler) GetQuestionCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.gameService.QuestionCount()})
}
