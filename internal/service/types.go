package service

import (
	"time"

	"mower-map-go/pkg/models"
)

// ZonePayload зона в запросе конфигурации
type ZonePayload struct {
	Name     string               `json:"name"`
	Vertices []models.Coordinates `json:"vertices"`
	Color    models.RGB           `json:"color"`
	Display  bool                 `json:"display"`
}

// HomePayload домашняя точка в запросе конфигурации
type HomePayload struct {
	Position models.Coordinates `json:"position"`
	Color    models.RGB         `json:"color"`
}

// SaveConfigRequest запрос на замену конфигурации карты
type SaveConfigRequest struct {
	TopLeft         models.Coordinates `json:"top_left"`
	BottomRight     models.Coordinates `json:"bottom_right"`
	MapImagePath    string             `json:"map_image_path"`
	MarkerImagePath string             `json:"marker_image_path,omitempty"`
	PathColor       models.RGB         `json:"path_color"`
	HistoryLength   int                `json:"history_length,omitempty"`
	Zones           []ZonePayload      `json:"zones"`
	Home            *HomePayload       `json:"home,omitempty"`
}

// LocationRequest запрос с новым измерением позиции
type LocationRequest struct {
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	Docked    bool       `json:"docked"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// MowerResponse ответ с информацией о газонокосилке
type MowerResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Configured bool          `json:"configured"`
	Zones      []ZonePayload `json:"zones,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ListMowersResponse ответ со списком газонокосилок
type ListMowersResponse struct {
	Mowers []MowerResponse `json:"mowers"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
}

// ZoneStateResponse ответ с текущей зоной газонокосилки
type ZoneStateResponse struct {
	MowerID   string     `json:"mower_id"`
	ZoneName  *string    `json:"zone_name"` // null когда ни одна зона не совпала
	Matched   bool       `json:"matched"`
	Docked    bool       `json:"docked"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// StatsResponse статистика следа газонокосилки
type StatsResponse struct {
	MowerID        string     `json:"mower_id"`
	Samples        int64      `json:"samples"`
	TrailPoints    int        `json:"trail_points"`
	DistanceMeters float64    `json:"distance_meters"`
	LastUpdate     *time.Time `json:"last_update,omitempty"`
}
