package models

import "time"

// Coordinates представляет географические координаты
type Coordinates struct {
	Lat float64 `json:"lat"` // Широта
	Lon float64 `json:"lon"` // Долгота
}

// Valid проверяет, что координаты находятся в пределах WGS84
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// RGB представляет цвет в формате RGB
type RGB struct {
	R uint8 `json:"r"` // Красный
	G uint8 `json:"g"` // Зеленый
	B uint8 `json:"b"` // Синий
}

// LocationSample представляет одно измерение позиции газонокосилки
type LocationSample struct {
	Position  Coordinates `json:"position"`  // Географическая позиция
	Docked    bool        `json:"docked"`    // Находится ли косилка на зарядной станции
	Timestamp time.Time   `json:"timestamp"` // Время измерения
}

// PositionStatusResponse определяет структуру ответа внешнего API позиций
type PositionStatusResponse struct {
	MowerID   string      `json:"mower_id"`  // ID газонокосилки
	Position  Coordinates `json:"position"`  // Последняя известная позиция
	Activity  string      `json:"activity"`  // Активность (MOWING, CHARGING, PARKED_IN_CS, ...)
	Timestamp time.Time   `json:"timestamp"` // Время измерения
}

// HealthResponse представляет ответ проверки здоровья сервиса
type HealthResponse struct {
	Status   string `json:"status"`   // Статус сервиса (healthy/unhealthy)
	Database bool   `json:"database"` // Доступна ли база данных
	Version  string `json:"version"`  // Версия сервиса
}
