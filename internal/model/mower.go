package model

import (
	"time"

	"gorm.io/gorm"
)

// Mower представляет газонокосилку в базе данных
type Mower struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Связь с конфигурацией карты и зонами
	Config *MapConfig `gorm:"foreignKey:MowerID;constraint:OnDelete:CASCADE" json:"config,omitempty"`
	Zones  []Zone     `gorm:"foreignKey:MowerID;constraint:OnDelete:CASCADE" json:"zones"`
}

// MapConfig представляет конфигурацию карты газонокосилки в базе данных
type MapConfig struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MowerID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"mower_id"`

	// Углы калибровки: верхний левый и нижний правый
	TopLeftLat     float64 `gorm:"not null" json:"top_left_lat"`
	TopLeftLon     float64 `gorm:"not null" json:"top_left_lon"`
	BottomRightLat float64 `gorm:"not null" json:"bottom_right_lat"`
	BottomRightLon float64 `gorm:"not null" json:"bottom_right_lon"`

	MapImagePath    string `gorm:"type:varchar(500)" json:"map_image_path"`
	MarkerImagePath string `gorm:"type:varchar(500)" json:"marker_image_path"`

	PathColorR uint8 `gorm:"not null;default:255" json:"path_color_r"`
	PathColorG uint8 `gorm:"not null;default:0" json:"path_color_g"`
	PathColorB uint8 `gorm:"not null;default:0" json:"path_color_b"`

	HistoryLength int `gorm:"not null;default:50" json:"history_length"`

	// Домашняя точка (зарядная станция), опциональна
	HomeEnabled bool    `gorm:"not null;default:false" json:"home_enabled"`
	HomeLat     float64 `json:"home_lat"`
	HomeLon     float64 `json:"home_lon"`
	HomeColorR  uint8   `gorm:"not null;default:0" json:"home_color_r"`
	HomeColorG  uint8   `gorm:"not null;default:0" json:"home_color_g"`
	HomeColorB  uint8   `gorm:"not null;default:255" json:"home_color_b"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Zone представляет зону газонокосилки в базе данных
type Zone struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MowerID string `gorm:"type:varchar(36);not null;index" json:"mower_id"`

	// Позиция в порядке объявления, определяет приоритет при пересечении зон
	Position int    `gorm:"not null" json:"position"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`

	ColorR  uint8 `gorm:"not null;default:255" json:"color_r"`
	ColorG  uint8 `gorm:"not null;default:255" json:"color_g"`
	ColorB  uint8 `gorm:"not null;default:255" json:"color_b"`
	Display bool  `gorm:"not null;default:true" json:"display"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Вершины полигона в порядке обхода
	Vertices []ZoneVertex `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"vertices"`
}

// ZoneVertex представляет вершину полигона зоны в базе данных
type ZoneVertex struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ZoneID uint `gorm:"not null;index" json:"zone_id"`

	// Порядковый номер вершины в полигоне
	Seq int     `gorm:"not null" json:"seq"`
	Lat float64 `gorm:"not null" json:"lat"`
	Lon float64 `gorm:"not null" json:"lon"`
}

// TableName указывает имя таблицы для Mower
func (Mower) TableName() string {
	return "mowers"
}

// TableName указывает имя таблицы для MapConfig
func (MapConfig) TableName() string {
	return "map_configs"
}

// TableName указывает имя таблицы для Zone
func (Zone) TableName() string {
	return "zones"
}

// TableName указывает имя таблицы для ZoneVertex
func (ZoneVertex) TableName() string {
	return "zone_vertices"
}
