package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marmitaria/internal/catalog"
	"marmitaria/internal/composition"
	"marmitaria/internal/models"
)

// CatalogSource hands out the current catalog snapshot.
type CatalogSource interface {
	Snapshot() *catalog.Catalog
}

type sizeResponse struct {
	Size  models.Size     `json:"size"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

func GetCatalog(live CatalogSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /catalog"
		defer handlePanic(c, route)

		snap := live.Snapshot()

		sizes := make([]sizeResponse, 0, len(models.Sizes()))
		for _, sp := range snap.SizePrices() {
			sizes = append(sizes, sizeResponse{Size: sp.Size, Label: sp.Size.Label(), Price: sp.Price})
		}

		c.JSON(http.StatusOK, gin.H{
			"categories":    composition.Groups(snap.ListActiveIngredients(), nil, snap),
			"extras":        snap.ListActiveExtras(),
			"sizes":         sizes,
			"zones":         snap.Zones(),
			"neighborhoods": snap.Neighborhoods(),
		})
	}
}

func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, composition.Rules())
	}
}
