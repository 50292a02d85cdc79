package geo

import (
	"errors"
	"fmt"
	"math"

	"mower-map-go/pkg/models"
)

// ErrInvalidZoneGeometry возвращается при вырожденном полигоне зоны
var ErrInvalidZoneGeometry = errors.New("invalid zone geometry")

const boundaryEpsilon = 1e-9

// ValidatePolygon проверяет полигон зоны один раз при загрузке конфигурации
func ValidatePolygon(polygon []models.Coordinates) error {
	if len(polygon) < 3 {
		return fmt.Errorf("%w: polygon has %d vertices, need at least 3", ErrInvalidZoneGeometry, len(polygon))
	}
	for i, v := range polygon {
		if !v.Valid() {
			return fmt.Errorf("%w: vertex %d out of WGS84 bounds", ErrInvalidZoneGeometry, i)
		}
		// Последовательные дубликаты образуют ребро нулевой длины
		next := polygon[(i+1)%len(polygon)]
		if v.Lat == next.Lat && v.Lon == next.Lon {
			return fmt.Errorf("%w: zero length edge at vertex %d", ErrInvalidZoneGeometry, i)
		}
	}
	if polygonArea(polygon) < boundaryEpsilon {
		return fmt.Errorf("%w: polygon has zero area", ErrInvalidZoneGeometry)
	}
	return nil
}

// PointInPolygon проверяет попадание точки в полигон методом трассировки луча.
// Работает в географических координатах, поэтому результат не зависит от калибровки.
// Точки ровно на ребре считаются внутренними, чтобы косилка на границе зоны
// не мерцала между зоной и "нет зоны".
func PointInPolygon(p models.Coordinates, polygon []models.Coordinates) bool {
	if len(polygon) < 3 {
		return false
	}

	n := len(polygon)
	for i := 0; i < n; i++ {
		if pointOnSegment(p, polygon[i], polygon[(i+1)%n]) {
			return true
		}
	}

	inside := false
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]

		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lon < (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}

	return inside
}

// pointOnSegment проверяет, лежит ли точка на отрезке ab
func pointOnSegment(p, a, b models.Coordinates) bool {
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if math.Abs(cross) > boundaryEpsilon {
		return false
	}
	dot := (p.Lon-a.Lon)*(b.Lon-a.Lon) + (p.Lat-a.Lat)*(b.Lat-a.Lat)
	if dot < -boundaryEpsilon {
		return false
	}
	lenSq := (b.Lon-a.Lon)*(b.Lon-a.Lon) + (b.Lat-a.Lat)*(b.Lat-a.Lat)
	return dot <= lenSq+boundaryEpsilon
}

// polygonArea вычисляет площадь полигона по формуле шнуровки
func polygonArea(polygon []models.Coordinates) float64 {
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return math.Abs(sum) / 2
}
