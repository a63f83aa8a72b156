package routes

import (
	"log"
	"net/http"

	"quizroom/handlers"
	"quizroom/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func SetupRoutes(router *gin.Engine, gameHandler *handlers.GameHandler, hub *services.Hub) {
	api := router.Group("/api")
	{
		api.GET("/rooms/:code", gameHandler.GetRoom)
		api.GET("/questions/count", gameHandler.GetQuestionCount)
	}

	// All game actions run over this socket; the connection id doubles as the
	// player identity for the lifetime of the connection.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		hub.RegisterClient(conn)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
