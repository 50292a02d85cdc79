package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mower-map-go/internal/database"
	"mower-map-go/internal/geo"
	"mower-map-go/internal/render"
	"mower-map-go/internal/service"
	"mower-map-go/pkg/models"
)

// CameraHandler обрабатывает HTTP запросы карты и зон газонокосилок
type CameraHandler struct {
	configService *service.ConfigService
	cameraService *service.CameraService
	logger        *logrus.Logger
}

// NewCameraHandler создает новый экземпляр CameraHandler
func NewCameraHandler(configService *service.ConfigService, cameraService *service.CameraService, logger *logrus.Logger) *CameraHandler {
	return &CameraHandler{
		configService: configService,
		cameraService: cameraService,
		logger:        logger,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *CameraHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/mowers", h.CreateMower)
		api.GET("/mowers", h.ListMowers)
		api.GET("/mowers/:id", h.GetMower)
		api.DELETE("/mowers/:id", h.DeleteMower)
		api.PUT("/mowers/:id/config", h.SaveConfig)
		api.POST("/mowers/:id/location", h.PushLocation)
		api.GET("/mowers/:id/zone", h.GetZoneState)
		api.GET("/mowers/:id/map", h.GetMapFrame)
		api.POST("/mowers/:id/history/reset", h.ResetHistory)
		api.GET("/mowers/:id/stats", h.GetStats)
		api.GET("/health", h.CheckHealth)
	}
}

// CreateMower регистрирует новую газонокосилку
func (h *CameraHandler) CreateMower(c *gin.Context) {
	h.logger.Info("Получен запрос на регистрацию газонокосилки")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат запроса"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Имя газонокосилки обязательно"})
		return
	}

	mower, err := h.configService.CreateMower(req.Name)
	if err != nil {
		h.logger.Errorf("Ошибка регистрации газонокосилки: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка регистрации газонокосилки"})
		return
	}

	h.cameraService.Register(mower.ID)
	c.JSON(http.StatusCreated, mower)
}

// ListMowers возвращает список газонокосилок с пагинацией
func (h *CameraHandler) ListMowers(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	mowers, total, err := h.configService.ListMowers(page, size)
	if err != nil {
		h.logger.Errorf("Ошибка получения списка газонокосилок: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения списка газонокосилок"})
		return
	}

	response := service.ListMowersResponse{
		Mowers: mowers,
		Total:  total,
		Page:   page,
		Size:   size,
	}

	c.JSON(http.StatusOK, response)
}

// GetMower возвращает газонокосилку по ID
func (h *CameraHandler) GetMower(c *gin.Context) {
	mowerID := c.Param("id")

	mower, err := h.configService.GetMower(mowerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
		return
	}

	c.JSON(http.StatusOK, mower)
}

// DeleteMower удаляет газонокосилку
func (h *CameraHandler) DeleteMower(c *gin.Context) {
	mowerID := c.Param("id")
	h.logger.Infof("Получен запрос на удаление газонокосилки %s", mowerID)

	if err := h.configService.DeleteMower(mowerID); err != nil {
		h.logger.Errorf("Ошибка удаления газонокосилки: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка удаления газонокосилки"})
		return
	}

	h.cameraService.Remove(mowerID)
	c.JSON(http.StatusOK, gin.H{"message": "Газонокосилка успешно удалена"})
}

// SaveConfig заменяет конфигурацию карты газонокосилки
func (h *CameraHandler) SaveConfig(c *gin.Context) {
	mowerID := c.Param("id")
	h.logger.Infof("Получен запрос на обновление конфигурации карты для %s", mowerID)

	var req service.SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Ошибка парсинга конфигурации: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат конфигурации"})
		return
	}

	cfg, err := h.configService.SaveConfig(mowerID, req)
	if err != nil {
		// Геометрические дефекты конфигурации возвращаем с конкретной причиной
		if errors.Is(err, geo.ErrInvalidCalibration) || errors.Is(err, geo.ErrInvalidZoneGeometry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Ошибка сохранения конфигурации: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения конфигурации"})
		return
	}

	if err := h.cameraService.ApplyConfig(mowerID, cfg); err != nil {
		h.logger.Errorf("Ошибка применения конфигурации: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка применения конфигурации"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Конфигурация карты сохранена"})
}

// PushLocation принимает новое измерение позиции газонокосилки
func (h *CameraHandler) PushLocation(c *gin.Context) {
	mowerID := c.Param("id")

	var req service.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат измерения"})
		return
	}

	position := models.Coordinates{Lat: req.Lat, Lon: req.Lon}
	if !position.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Координаты вне диапазона WGS84"})
		return
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	sample := models.LocationSample{
		Position:  position,
		Docked:    req.Docked,
		Timestamp: timestamp,
	}

	classification, err := h.cameraService.ProcessSample(mowerID, sample)
	if err != nil {
		if errors.Is(err, service.ErrMowerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
			return
		}
		h.logger.Errorf("Ошибка обработки измерения: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка обработки измерения"})
		return
	}

	c.JSON(http.StatusOK, classification)
}

// GetZoneState возвращает текущую зону газонокосилки
func (h *CameraHandler) GetZoneState(c *gin.Context) {
	mowerID := c.Param("id")

	state, err := h.cameraService.ZoneState(mowerID)
	if err != nil {
		if errors.Is(err, service.ErrMowerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
			return
		}
		h.logger.Errorf("Ошибка получения зоны: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения зоны"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetMapFrame возвращает текущий кадр карты в PNG
func (h *CameraHandler) GetMapFrame(c *gin.Context) {
	mowerID := c.Param("id")

	frame, err := h.cameraService.Frame(mowerID)
	if err != nil {
		if errors.Is(err, service.ErrMowerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
			return
		}
		if errors.Is(err, render.ErrRenderUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Рендеринг карты недоступен"})
			return
		}
		h.logger.Errorf("Ошибка рендеринга кадра: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка рендеринга кадра"})
		return
	}

	c.Data(http.StatusOK, "image/png", frame)
}

// ResetHistory очищает историю позиций газонокосилки
func (h *CameraHandler) ResetHistory(c *gin.Context) {
	mowerID := c.Param("id")
	h.logger.Infof("Получен запрос на очистку истории для %s", mowerID)

	if err := h.cameraService.ResetHistory(mowerID); err != nil {
		if errors.Is(err, service.ErrMowerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
			return
		}
		h.logger.Errorf("Ошибка очистки истории: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка очистки истории"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "История позиций очищена"})
}

// GetStats возвращает статистику следа газонокосилки
func (h *CameraHandler) GetStats(c *gin.Context) {
	mowerID := c.Param("id")

	stats, err := h.cameraService.Stats(mowerID)
	if err != nil {
		if errors.Is(err, service.ErrMowerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Газонокосилка не найдена"})
			return
		}
		h.logger.Errorf("Ошибка получения статистики: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CheckHealth проверяет состояние сервиса
func (h *CameraHandler) CheckHealth(c *gin.Context) {
	if err := database.HealthCheck(); err != nil {
		h.logger.Errorf("База данных недоступна: %v", err)
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
			Status:   "unhealthy",
			Database: false,
			Version:  "1.0.0",
		})
		return
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Database: true,
		Version:  "1.0.0",
	})
}
