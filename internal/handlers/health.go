package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Health(live CatalogSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"
		defer handlePanic(c, route)

		snap := live.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"ingredients": len(snap.ListActiveIngredients()),
		})
	}
}
