package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mower-map-go/internal/geo"
	"mower-map-go/internal/model"
	"mower-map-go/internal/repository"
	"mower-map-go/internal/zones"
	"mower-map-go/pkg/models"
)

// ConfigService сервис для работы с газонокосилками и конфигурацией карт
type ConfigService struct {
	mowerRepo repository.MowerRepository
	logger    *logrus.Logger
}

// NewConfigService создает новый сервис конфигурации
func NewConfigService(mowerRepo repository.MowerRepository, logger *logrus.Logger) *ConfigService {
	return &ConfigService{
		mowerRepo: mowerRepo,
		logger:    logger,
	}
}

// CreateMower регистрирует новую газонокосилку
func (s *ConfigService) CreateMower(name string) (*MowerResponse, error) {
	mower := &model.Mower{
		ID:   uuid.New().String(),
		Name: name,
	}

	s.logger.Infof("Регистрируем газонокосилку %s (%s)", mower.ID, name)
	if err := s.mowerRepo.Create(mower); err != nil {
		s.logger.Errorf("Ошибка регистрации газонокосилки: %v", err)
		return nil, fmt.Errorf("failed to create mower: %w", err)
	}

	return s.modelToResponse(mower), nil
}

// GetMower получает газонокосилку по ID
func (s *ConfigService) GetMower(mowerID string) (*MowerResponse, error) {
	mower, err := s.mowerRepo.GetByID(mowerID)
	if err != nil {
		s.logger.Errorf("Ошибка получения газонокосилки: %v", err)
		return nil, fmt.Errorf("failed to get mower: %w", err)
	}

	return s.modelToResponse(mower), nil
}

// ListMowers получает список газонокосилок с пагинацией
func (s *ConfigService) ListMowers(page, pageSize int) ([]MowerResponse, int64, error) {
	mowers, total, err := s.mowerRepo.List(page, pageSize)
	if err != nil {
		s.logger.Errorf("Ошибка получения списка газонокосилок: %v", err)
		return nil, 0, fmt.Errorf("failed to list mowers: %w", err)
	}

	responses := make([]MowerResponse, len(mowers))
	for i, mower := range mowers {
		responses[i] = *s.modelToResponse(mower)
	}

	return responses, total, nil
}

// DeleteMower удаляет газонокосилку вместе с конфигурацией
func (s *ConfigService) DeleteMower(mowerID string) error {
	s.logger.Infof("Удаляем газонокосилку %s", mowerID)

	if err := s.mowerRepo.Delete(mowerID); err != nil {
		s.logger.Errorf("Ошибка удаления газонокосилки: %v", err)
		return fmt.Errorf("failed to delete mower: %w", err)
	}

	return nil
}

// SaveConfig валидирует и сохраняет конфигурацию карты газонокосилки.
// Вся геометрия проверяется здесь, до записи в базу: вырожденные углы
// и полигоны отклоняются сразу и не попадают на горячий путь.
func (s *ConfigService) SaveConfig(mowerID string, req SaveConfigRequest) (*zones.Config, error) {
	// Проверяем, что газонокосилка зарегистрирована
	if _, err := s.mowerRepo.GetByID(mowerID); err != nil {
		return nil, fmt.Errorf("failed to get mower: %w", err)
	}

	cfg, err := buildDomainConfig(req)
	if err != nil {
		s.logger.Errorf("Конфигурация карты отклонена: %v", err)
		return nil, err
	}

	configModel, zoneModels := configToModels(mowerID, req)
	if err := s.mowerRepo.SaveConfig(mowerID, configModel, zoneModels); err != nil {
		s.logger.Errorf("Ошибка сохранения конфигурации: %v", err)
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Infof("Конфигурация карты для %s сохранена: %d зон, история %d точек",
		mowerID, len(cfg.Zones), cfg.HistoryLength)
	return cfg, nil
}

// LoadConfig загружает и валидирует сохраненную конфигурацию карты.
// Возвращает nil без ошибки, если конфигурация еще не задана.
func (s *ConfigService) LoadConfig(mowerID string) (*zones.Config, error) {
	mower, err := s.mowerRepo.GetByID(mowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mower: %w", err)
	}

	if mower.Config == nil {
		return nil, nil
	}

	return modelsToConfig(mower.Config, mower.Zones)
}

// buildDomainConfig преобразует запрос в валидированную конфигурацию
func buildDomainConfig(req SaveConfigRequest) (*zones.Config, error) {
	corners := geo.CalibrationCorners{
		TopLeft:     req.TopLeft,
		BottomRight: req.BottomRight,
	}

	zoneList := make([]zones.Zone, len(req.Zones))
	for i, z := range req.Zones {
		zoneList[i] = zones.Zone{
			Name:     z.Name,
			Vertices: z.Vertices,
			Color:    z.Color,
			Display:  z.Display,
		}
	}

	var home *zones.HomeZone
	if req.Home != nil {
		home = &zones.HomeZone{
			Position: req.Home.Position,
			Color:    req.Home.Color,
		}
	}

	return zones.BuildConfig(corners, zoneList, home, req.PathColor, req.HistoryLength, req.MapImagePath, req.MarkerImagePath)
}

// configToModels преобразует запрос конфигурации в модели базы данных
func configToModels(mowerID string, req SaveConfigRequest) (*model.MapConfig, []model.Zone) {
	configModel := &model.MapConfig{
		MowerID:         mowerID,
		TopLeftLat:      req.TopLeft.Lat,
		TopLeftLon:      req.TopLeft.Lon,
		BottomRightLat:  req.BottomRight.Lat,
		BottomRightLon:  req.BottomRight.Lon,
		MapImagePath:    req.MapImagePath,
		MarkerImagePath: req.MarkerImagePath,
		PathColorR:      req.PathColor.R,
		PathColorG:      req.PathColor.G,
		PathColorB:      req.PathColor.B,
		HistoryLength:   req.HistoryLength,
	}

	if req.Home != nil {
		configModel.HomeEnabled = true
		configModel.HomeLat = req.Home.Position.Lat
		configModel.HomeLon = req.Home.Position.Lon
		configModel.HomeColorR = req.Home.Color.R
		configModel.HomeColorG = req.Home.Color.G
		configModel.HomeColorB = req.Home.Color.B
	}

	zoneModels := make([]model.Zone, len(req.Zones))
	for i, z := range req.Zones {
		zoneModels[i] = model.Zone{
			Position: i,
			Name:     z.Name,
			ColorR:   z.Color.R,
			ColorG:   z.Color.G,
			ColorB:   z.Color.B,
			Display:  z.Display,
		}
		for j, v := range z.Vertices {
			zoneModels[i].Vertices = append(zoneModels[i].Vertices, model.ZoneVertex{
				Seq: j,
				Lat: v.Lat,
				Lon: v.Lon,
			})
		}
	}

	return configModel, zoneModels
}

// modelsToConfig собирает валидированную конфигурацию из моделей базы данных
func modelsToConfig(configModel *model.MapConfig, zoneModels []model.Zone) (*zones.Config, error) {
	corners := geo.CalibrationCorners{
		TopLeft:     models.Coordinates{Lat: configModel.TopLeftLat, Lon: configModel.TopLeftLon},
		BottomRight: models.Coordinates{Lat: configModel.BottomRightLat, Lon: configModel.BottomRightLon},
	}

	zoneList := make([]zones.Zone, len(zoneModels))
	for i, z := range zoneModels {
		vertices := make([]models.Coordinates, len(z.Vertices))
		for j, v := range z.Vertices {
			vertices[j] = models.Coordinates{Lat: v.Lat, Lon: v.Lon}
		}
		zoneList[i] = zones.Zone{
			Name:     z.Name,
			Vertices: vertices,
			Color:    models.RGB{R: z.ColorR, G: z.ColorG, B: z.ColorB},
			Display:  z.Display,
		}
	}

	var home *zones.HomeZone
	if configModel.HomeEnabled {
		home = &zones.HomeZone{
			Position: models.Coordinates{Lat: configModel.HomeLat, Lon: configModel.HomeLon},
			Color:    models.RGB{R: configModel.HomeColorR, G: configModel.HomeColorG, B: configModel.HomeColorB},
		}
	}

	pathColor := models.RGB{R: configModel.PathColorR, G: configModel.PathColorG, B: configModel.PathColorB}

	return zones.BuildConfig(corners, zoneList, home, pathColor, configModel.HistoryLength, configModel.MapImagePath, configModel.MarkerImagePath)
}

// modelToResponse преобразует модель базы данных в ответ API
func (s *ConfigService) modelToResponse(mower *model.Mower) *MowerResponse {
	response := &MowerResponse{
		ID:         mower.ID,
		Name:       mower.Name,
		Configured: mower.Config != nil,
		CreatedAt:  mower.CreatedAt,
	}

	for _, z := range mower.Zones {
		zone := ZonePayload{
			Name:    z.Name,
			Color:   models.RGB{R: z.ColorR, G: z.ColorG, B: z.ColorB},
			Display: z.Display,
		}
		for _, v := range z.Vertices {
			zone.Vertices = append(zone.Vertices, models.Coordinates{Lat: v.Lat, Lon: v.Lon})
		}
		response.Zones = append(response.Zones, zone)
	}

	return response
}
