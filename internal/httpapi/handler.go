// Package httpapi exposes the inventory over HTTP. It plays the role of
// the app's screens: it validates form input before handing it to the
// remote gateway, and drives the offline cache's sync policy explicitly.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/admotors/inventory/internal/common/logger"
	"github.com/admotors/inventory/internal/device"
	"github.com/admotors/inventory/internal/localstore"
	"github.com/admotors/inventory/internal/remote"
	"github.com/admotors/inventory/internal/vehiculo"
)

// staleAfterMinutes is how old the last sync may get before POST /sync
// actually pulls from the server again (force=true overrides).
const staleAfterMinutes = 5

// Handler carries the wired components behind the routes.
type Handler struct {
	gateway *remote.Gateway
	cache   *vehiculo.Cache
	store   *localstore.Store
	dev     *device.Manager
	log     logger.Logger
}

// NewHandler wires the HTTP surface.
func NewHandler(gateway *remote.Gateway, cache *vehiculo.Cache, store *localstore.Store, dev *device.Manager, log logger.Logger) *Handler {
	return &Handler{gateway: gateway, cache: cache, store: store, dev: dev, log: log}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(r *gin.Engine) error {
	v1 := r.Group("/api/v1")

	v1.GET("/device", h.deviceID)

	v1.GET("/vehiculos", h.listVehiculos)
	v1.POST("/vehiculos", h.createVehiculo)
	v1.GET("/vehiculos/:id", h.getVehiculo)
	v1.PUT("/vehiculos/:id", h.updateVehiculo)
	v1.DELETE("/vehiculos/:id", h.deleteVehiculo)
	v1.GET("/vehiculos/:id/imagenes", h.listImagenes)

	v1.POST("/sync", h.sync)

	v1.GET("/cache/vehiculos", h.listCached)
	v1.GET("/cache/vehiculos/:id", h.getCached)
	v1.DELETE("/cache/vehiculos", h.clearCache)
	v1.GET("/cache/estadisticas", h.estadisticas)

	return nil
}

func (h *Handler) deviceID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"device_id": h.dev.DeviceID()})
}

func (h *Handler) listVehiculos(c *gin.Context) {
	// read path degrades to an empty inventory on remote failure
	c.JSON(http.StatusOK, h.gateway.List(c.Request.Context()))
}

func (h *Handler) getVehiculo(c *gin.Context) {
	v, err := h.gateway.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehiculo not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) createVehiculo(c *gin.Context) {
	var form vehiculo.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := form.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.gateway.Create(c.Request.Context(), form)
	if err != nil {
		// mutating path: the failure surfaces so the form keeps its state
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id_vehiculo": id})
}

func (h *Handler) updateVehiculo(c *gin.Context) {
	var form vehiculo.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := form.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gateway.Update(c.Request.Context(), c.Param("id"), form); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id_vehiculo": c.Param("id")})
}

func (h *Handler) deleteVehiculo(c *gin.Context) {
	if err := h.gateway.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listImagenes(c *gin.Context) {
	c.JSON(http.StatusOK, h.gateway.Imagenes(c.Request.Context(), c.Param("id")))
}

// sync pulls the device's remote rows into the offline mirror. Unless
// forced, a fresh enough mirror is left alone.
func (h *Handler) sync(c *gin.Context) {
	force := c.Query("force") == "true"
	if !force && !h.store.ShouldSync(staleAfterMinutes) {
		last, _ := h.store.GetLastSyncTime()
		c.JSON(http.StatusOK, gin.H{"synced": false, "last_sync": last})
		return
	}

	remoteList := h.gateway.List(c.Request.Context())
	if err := h.cache.SyncWithServer(remoteList); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	last, _ := h.store.GetLastSyncTime()
	c.JSON(http.StatusOK, gin.H{
		"synced":    true,
		"total":     len(h.cache.List()),
		"last_sync": last,
	})
}

func (h *Handler) listCached(c *gin.Context) {
	if sortKey := c.Query("sort"); sortKey != "" {
		c.JSON(http.StatusOK, h.cache.Sort(vehiculo.SortKey(sortKey)))
		return
	}

	criteria, ok := h.criteriaFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.cache.Filter(criteria))
}

func (h *Handler) getCached(c *gin.Context) {
	v := h.cache.GetByID(c.Param("id"))
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehiculo not cached"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) clearCache(c *gin.Context) {
	if err := h.cache.ClearAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) estadisticas(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Estadisticas())
}

func (h *Handler) criteriaFromQuery(c *gin.Context) (vehiculo.Criteria, bool) {
	criteria := vehiculo.Criteria{
		Marca:       c.Query("marca"),
		Combustible: vehiculo.Combustible(c.Query("combustible")),
	}
	if raw := c.Query("precio_min"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid precio_min"})
			return vehiculo.Criteria{}, false
		}
		criteria.PrecioMin = &min
	}
	if raw := c.Query("precio_max"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid precio_max"})
			return vehiculo.Criteria{}, false
		}
		criteria.PrecioMax = &max
	}
	return criteria, true
}
