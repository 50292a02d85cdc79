package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mower-map-go/internal/client"
	"mower-map-go/internal/config"
	"mower-map-go/internal/database"
	"mower-map-go/internal/handler"
	"mower-map-go/internal/repository"
	"mower-map-go/internal/service"
)

func main() {
	// Инициализируем логгер
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.Info("Запуск Mower Map API Server")

	// Получаем конфигурацию из переменных окружения
	cfg := config.LoadConfig()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Инициализируем базу данных
	logger.Info("Подключение к базе данных...")
	if err := database.Connect(); err != nil {
		logger.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Выполняем миграции
	logger.Info("Выполнение миграций базы данных...")
	if err := database.Migrate(); err != nil {
		logger.Fatalf("Ошибка выполнения миграций: %v", err)
	}

	// Проверяем здоровье базы данных
	if err := database.HealthCheck(); err != nil {
		logger.Fatalf("База данных недоступна: %v", err)
	}

	logger.Info("База данных успешно подключена и готова к работе")

	// Инициализируем репозитории
	mowerRepo := repository.NewMowerRepository(database.DB)

	// Инициализируем сервисы
	configService := service.NewConfigService(mowerRepo, logger)
	cameraService := service.NewCameraService(logger)

	// Восстанавливаем рабочее состояние из сохраненных конфигураций
	restoreMowers(configService, cameraService, logger)

	// Инициализируем обработчики
	cameraHandler := handler.NewCameraHandler(configService, cameraService, logger)

	// Запускаем опрос внешнего API позиций, если он настроен
	if cfg.Upstream.BaseURL != "" && cfg.Upstream.PollInterval > 0 {
		positionClient := client.NewPositionClient(
			cfg.Upstream.BaseURL,
			time.Duration(cfg.Upstream.Timeout)*time.Second,
			logger,
		)
		poller := client.NewPoller(
			positionClient,
			cameraService,
			time.Duration(cfg.Upstream.PollInterval)*time.Second,
			logger,
		)
		go poller.Run(context.Background())
	}

	// Настраиваем Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Обслуживание статических файлов: базовые карты и иконки косилок
	router.Static("/static", cfg.Camera.StaticDir)

	// Регистрируем маршруты
	cameraHandler.RegisterRoutes(router)

	// Добавляем базовый маршрут для проверки
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Mower Map API Server",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	// Запускаем сервер
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Сервер запущен на порту %d", cfg.Server.Port)
	logger.Infof("API доступно по адресу: http://localhost:%d/api/v1", cfg.Server.Port)

	if err := router.Run(serverAddr); err != nil {
		logger.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// restoreMowers регистрирует сохраненные газонокосилки и применяет их конфигурации
func restoreMowers(configService *service.ConfigService, cameraService *service.CameraService, logger *logrus.Logger) {
	mowers, total, err := configService.ListMowers(1, 100)
	if err != nil {
		logger.Warnf("Не удалось загрузить сохраненные газонокосилки: %v", err)
		return
	}

	for _, mower := range mowers {
		cameraService.Register(mower.ID)

		mapCfg, err := configService.LoadConfig(mower.ID)
		if err != nil {
			logger.Warnf("Конфигурация %s не прошла валидацию: %v", mower.ID, err)
			continue
		}
		if mapCfg == nil {
			continue
		}

		if err := cameraService.ApplyConfig(mower.ID, mapCfg); err != nil {
			logger.Warnf("Не удалось применить конфигурацию %s: %v", mower.ID, err)
		}
	}

	logger.Infof("Восстановлено %d газонокосилок из %d", len(mowers), total)
}

// corsMiddleware добавляет заголовки CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
