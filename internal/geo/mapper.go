package geo

import (
	"errors"
	"fmt"

	"mower-map-go/pkg/models"
)

// ErrInvalidCalibration возвращается при вырожденных углах калибровки
var ErrInvalidCalibration = errors.New("invalid calibration corners")

// CalibrationCorners два угла калибровки карты: верхний левый и нижний правый
type CalibrationCorners struct {
	TopLeft     models.Coordinates `json:"top_left"`
	BottomRight models.Coordinates `json:"bottom_right"`
}

// Validate проверяет углы калибровки один раз при загрузке конфигурации.
// Верхний левый угол должен быть севернее и западнее нижнего правого.
func (c CalibrationCorners) Validate() error {
	if !c.TopLeft.Valid() || !c.BottomRight.Valid() {
		return fmt.Errorf("%w: coordinates out of WGS84 bounds", ErrInvalidCalibration)
	}
	if c.TopLeft.Lat <= c.BottomRight.Lat {
		return fmt.Errorf("%w: top left latitude must be greater than bottom right", ErrInvalidCalibration)
	}
	if c.TopLeft.Lon >= c.BottomRight.Lon {
		return fmt.Errorf("%w: top left longitude must be less than bottom right", ErrInvalidCalibration)
	}
	return nil
}

// PixelPoint представляет координаты пикселя изображения, начало в левом верхнем углу
type PixelPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mapper преобразует географические координаты в пиксели изображения
type Mapper struct{}

// NewMapper создает новый преобразователь координат
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToPixel выполняет линейную интерполяцию независимо по каждой оси.
// Результат не ограничивается размерами изображения, обрезка происходит при отрисовке.
func (m *Mapper) ToPixel(p models.Coordinates, corners CalibrationCorners, imgWidth, imgHeight int) PixelPoint {
	x := (p.Lon - corners.TopLeft.Lon) / (corners.BottomRight.Lon - corners.TopLeft.Lon) * float64(imgWidth)
	y := (corners.TopLeft.Lat - p.Lat) / (corners.TopLeft.Lat - corners.BottomRight.Lat) * float64(imgHeight)
	return PixelPoint{X: int(x), Y: int(y)}
}
