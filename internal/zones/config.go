package zones

import (
	"fmt"

	"mower-map-go/internal/geo"
	"mower-map-go/pkg/models"
)

// DefaultHistoryLength длина истории позиций по умолчанию
const DefaultHistoryLength = 50

// Zone представляет именованную зону с полигоном и стилем отображения
type Zone struct {
	Name     string               `json:"name"`     // Уникальное имя зоны
	Vertices []models.Coordinates `json:"vertices"` // Вершины полигона в порядке обхода
	Color    models.RGB           `json:"color"`    // Цвет отображения
	Display  bool                 `json:"display"`  // Рисовать ли зону на карте
}

// HomeZone представляет домашнюю точку (зарядную станцию)
type HomeZone struct {
	Position models.Coordinates `json:"position"` // Координаты зарядной станции
	Color    models.RGB         `json:"color"`    // Цвет маркера дома
}

// Config валидированная конфигурация карты для одной газонокосилки.
// Строится один раз через BuildConfig, после этого только читается,
// поэтому горячий путь классификации не выполняет повторных проверок.
type Config struct {
	Corners         geo.CalibrationCorners
	Zones           []Zone
	Home            *HomeZone
	PathColor       models.RGB
	HistoryLength   int
	MapImagePath    string
	MarkerImagePath string
}

// BuildConfig строит и валидирует конфигурацию карты.
// Все геометрические проверки выполняются здесь, при загрузке конфигурации:
// вырожденные углы калибровки и вырожденные полигоны отклоняются сразу,
// а не при классификации или рендеринге.
func BuildConfig(corners geo.CalibrationCorners, zoneList []Zone, home *HomeZone, pathColor models.RGB, historyLength int, mapImagePath, markerImagePath string) (*Config, error) {
	if err := corners.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(zoneList))
	for i, zone := range zoneList {
		if zone.Name == "" {
			return nil, fmt.Errorf("%w: zone %d has empty name", geo.ErrInvalidZoneGeometry, i)
		}
		if seen[zone.Name] {
			return nil, fmt.Errorf("%w: duplicate zone name %q", geo.ErrInvalidZoneGeometry, zone.Name)
		}
		seen[zone.Name] = true

		if err := geo.ValidatePolygon(zone.Vertices); err != nil {
			return nil, fmt.Errorf("zone %q: %w", zone.Name, err)
		}
	}

	if home != nil && !home.Position.Valid() {
		return nil, fmt.Errorf("%w: home position out of WGS84 bounds", geo.ErrInvalidCalibration)
	}

	if historyLength <= 0 {
		historyLength = DefaultHistoryLength
	}

	cfg := &Config{
		Corners:         corners,
		Zones:           make([]Zone, len(zoneList)),
		Home:            home,
		PathColor:       pathColor,
		HistoryLength:   historyLength,
		MapImagePath:    mapImagePath,
		MarkerImagePath: markerImagePath,
	}
	// Копируем зоны, чтобы конфигурация не зависела от слайса вызывающего
	copy(cfg.Zones, zoneList)

	return cfg, nil
}
