package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Run(router *gin.Engine, port string, log *slog.Logger) {
	addr := ":" + port
	log.Info("listening", "addr", addr)
	if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}
