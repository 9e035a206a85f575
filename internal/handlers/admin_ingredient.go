package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"marmitaria/internal/catalog"
	"marmitaria/internal/models"
)

type IngredientCreateRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" binding:"required"`
	Category models.Category `json:"category" binding:"required"`
	Active   *bool           `json:"active"`
}

type IngredientUpdateRequest struct {
	Name     *string          `json:"name"`
	Category *models.Category `json:"category"`
	Active   *bool            `json:"active"`
}

type ExtraUpdateRequest struct {
	Name   *string          `json:"name"`
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

func respondCatalogError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, err.Error())
	case errors.Is(err, catalog.ErrDuplicate):
		respondWithError(c, http.StatusConflict, route, err.Error())
	case errors.Is(err, catalog.ErrInconsistent):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	default:
		logger.Error("catalog store error", zap.String("route", route), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, route, "db error")
	}
}

// reloadCatalog publishes the stored catalog to every session. A stored
// catalog that fails validation keeps the previous snapshot live.
func reloadCatalog(ctx context.Context, store *catalog.Store, live *catalog.Live) error {
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	live.Replace(snap)
	return nil
}

// catalogMutation wraps an admin write: it checks the database, runs the
// write and republishes the catalog before answering.
func catalogMutation(db *mongo.Database, live *catalog.Live, route string, status int,
	write func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := catalog.NewStore(db)
		result, err := write(ctx, c, store)
		if c.IsAborted() {
			return
		}
		if err != nil {
			respondCatalogError(c, route, err)
			return
		}

		if err := reloadCatalog(ctx, store, live); err != nil {
			logger.Error("catalog reload failed", zap.String("route", route), zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, route, "saved, but catalog reload failed: "+err.Error())
			return
		}

		if result == nil {
			c.JSON(status, gin.H{"message": "ok"})
			return
		}
		c.JSON(status, result)
	}
}

/*
GET /admin/api/ingredients
- every ingredient, active or not
- ?category= filters by category
*/
func GetAllIngredients(live CatalogSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/ingredients"
		defer handlePanic(c, route)

		ingredients := live.Snapshot().ListIngredients()
		if raw := strings.TrimSpace(c.Query("category")); raw != "" {
			category, err := models.ParseCategory(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			filtered := ingredients[:0:0]
			for _, ing := range ingredients {
				if ing.Category == category {
					filtered = append(filtered, ing)
				}
			}
			ingredients = filtered
		}

		c.JSON(http.StatusOK, gin.H{"data": ingredients})
	}
}

func CreateIngredient(db *mongo.Database, live *catalog.Live) gin.HandlerFunc {
	return catalogMutation(db, live, "POST /admin/api/ingredients", http.StatusCreated,
		func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error) {
			var req IngredientCreateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return nil, err
			}

			active := true
			if req.Active != nil {
				active = *req.Active
			}
			id := strings.TrimSpace(req.ID)
			if id == "" {
				id = string(req.Category) + "-" + uuid.NewString()[:8]
			}

			return store.CreateIngredient(ctx, models.Ingredient{
				ID:       id,
				Name:     req.Name,
				Category: req.Category,
				Active:   active,
			})
		})
}

func UpdateIngredient(db *mongo.Database, live *catalog.Live) gin.HandlerFunc {
	return catalogMutation(db, live, "PUT /admin/api/ingredients/:id", http.StatusOK,
		func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error) {
			var req IngredientUpdateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, "PUT /admin/api/ingredients/:id", "invalid body")
				return nil, err
			}
			return store.UpdateIngredient(ctx, c.Param("id"), catalog.IngredientUpdate(req))
		})
}

func ToggleIngredient(db *mongo.Database, live *catalog.Live) gin.HandlerFunc {
	return catalogMutation(db, live, "POST /admin/api/ingredients/:id/toggle", http.StatusOK,
		func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error) {
			return store.ToggleIngredient(ctx, c.Param("id"))
		})
}

func DeleteIngredient(db *mongo.Database, live *catalog.Live) gin.HandlerFunc {
	return catalogMutation(db, live, "DELETE /admin/api/ingredients/:id", http.StatusOK,
		func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error) {
			if err := store.DeleteIngredient(ctx, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"message": "ingredient deleted"}, nil
		})
}

func GetAllExtras(live CatalogSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/extras"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, gin.H{"data": live.Snapshot().ListExtras()})
	}
}

func UpdateExtra(db *mongo.Database, live *catalog.Live) gin.HandlerFunc {
	return catalogMutation(db, live, "PUT /admin/api/extras/:id", http.StatusOK,
		func(ctx context.Context, c *gin.Context, store *catalog.Store) (interface{}, error) {
			var req ExtraUpdateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, "PUT /admin/api/extras/:id", "invalid body")
				return nil, err
			}
			return store.UpdateExtra(ctx, c.Param("id"), catalog.ExtraUpdate(req))
		})
}
