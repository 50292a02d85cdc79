package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"mower-map-go/internal/geo"
	"mower-map-go/internal/zones"
)

// ErrRenderUnavailable возвращается, когда рендеринг не настроен или сломан.
// Классификация зон при этом остается доступной.
var ErrRenderUnavailable = errors.New("rendering unavailable")

const (
	markerWidth   = 64 // Ширина иконки косилки в пикселях
	dashLength    = 10 // Длина штриха следа в пикселях
	pathLineWidth = 2  // Толщина линии следа
	zoneFillAlpha = 25 // Прозрачность заливки зоны
	discRadius    = 6  // Радиус маркера-диска, когда иконка не настроена
)

// Renderer компонует кадр карты: базовое изображение с наложенными зонами,
// пунктирный след позиций и маркер текущей позиции.
// Зоны накладываются на базовое изображение один раз при создании,
// каждый кадр копирует готовую подложку.
type Renderer struct {
	cfg       *zones.Config
	mapper    *geo.Mapper
	base      *image.RGBA
	marker    *image.RGBA
	width     int
	height    int
	homePixel *geo.PixelPoint
	logger    *logrus.Logger
}

// NewRenderer создает рендерер для валидированной конфигурации.
// baseImage обязателен, markerImage опционален: без него маркер рисуется диском.
func NewRenderer(cfg *zones.Config, baseImage, markerImage image.Image, logger *logrus.Logger) (*Renderer, error) {
	if baseImage == nil {
		return nil, fmt.Errorf("%w: no base map image", ErrRenderUnavailable)
	}

	bounds := baseImage.Bounds()
	base := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(base, base.Bounds(), baseImage, bounds.Min, draw.Src)

	r := &Renderer{
		cfg:    cfg,
		mapper: geo.NewMapper(),
		base:   base,
		width:  bounds.Dx(),
		height: bounds.Dy(),
		logger: logger,
	}

	if markerImage != nil {
		r.marker = scaleMarker(markerImage)
	}

	if cfg.Home != nil {
		p := r.mapper.ToPixel(cfg.Home.Position, cfg.Corners, r.width, r.height)
		r.homePixel = &p
	}

	r.overlayZones()

	return r, nil
}

// Size возвращает размеры кадра в пикселях
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render компонует кадр: подложка с зонами, пунктирный след, маркер позиции.
// Пока косилка на зарядной станции и дом настроен, маркер рисуется в домашней
// точке независимо от переданной позиции. Чистая функция своих аргументов:
// одинаковые входы дают байт-в-байт одинаковый PNG.
func (r *Renderer) Render(path []geo.PixelPoint, marker geo.PixelPoint, docked, hasSample bool) ([]byte, error) {
	frame := image.NewRGBA(r.base.Bounds())
	draw.Draw(frame, frame.Bounds(), r.base, image.Point{}, draw.Src)

	pathColor := color.RGBA{R: r.cfg.PathColor.R, G: r.cfg.PathColor.G, B: r.cfg.PathColor.B, A: 255}
	// След короче двух точек не дает ни одного отрезка, это не ошибка
	for i := 1; i < len(path); i++ {
		r.drawDashedLine(frame, path[i-1], path[i], pathColor)
	}

	if hasSample {
		pos := marker
		markerColor := pathColor
		if docked && r.homePixel != nil {
			pos = *r.homePixel
			if r.cfg.Home != nil {
				markerColor = color.RGBA{R: r.cfg.Home.Color.R, G: r.cfg.Home.Color.G, B: r.cfg.Home.Color.B, A: 255}
			}
		}
		r.drawMarker(frame, pos, markerColor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("%w: png encode failed: %v", ErrRenderUnavailable, err)
	}
	return buf.Bytes(), nil
}

// overlayZones накладывает отображаемые зоны на подложку:
// полупрозрачная заливка цветом зоны и непрозрачный контур
func (r *Renderer) overlayZones() {
	for _, zone := range r.cfg.Zones {
		if !zone.Display {
			continue
		}

		pixels := make([]geo.PixelPoint, len(zone.Vertices))
		for i, v := range zone.Vertices {
			pixels[i] = r.mapper.ToPixel(v, r.cfg.Corners, r.width, r.height)
		}

		fill := color.RGBA{R: zone.Color.R, G: zone.Color.G, B: zone.Color.B, A: zoneFillAlpha}
		outline := color.RGBA{R: zone.Color.R, G: zone.Color.G, B: zone.Color.B, A: 255}

		fillPolygon(r.base, pixels, fill)
		for i := 0; i < len(pixels); i++ {
			drawLine(r.base, pixels[i], pixels[(i+1)%len(pixels)], outline)
		}
	}
}

// drawMarker рисует маркер позиции: иконку косилки, привязанную нижним краем
// к точке, либо диск, если иконка не настроена
func (r *Renderer) drawMarker(frame *image.RGBA, p geo.PixelPoint, c color.RGBA) {
	if r.marker != nil {
		w := r.marker.Bounds().Dx()
		h := r.marker.Bounds().Dy()
		target := image.Rect(p.X-w/2, p.Y-h, p.X-w/2+w, p.Y-h+h)
		draw.Draw(frame, target, r.marker, image.Point{}, draw.Over)
		return
	}

	for dy := -discRadius; dy <= discRadius; dy++ {
		for dx := -discRadius; dx <= discRadius; dx++ {
			if dx*dx+dy*dy <= discRadius*discRadius {
				setPixel(frame, p.X+dx, p.Y+dy, c)
			}
		}
	}
}

// drawDashedLine рисует пунктирную линию: отрезок разбивается на штрихи
// по dashLength пикселей, рисуется каждый второй
func (r *Renderer) drawDashedLine(frame *image.RGBA, from, to geo.PixelPoint, c color.RGBA) {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}

	steps := int(length / dashLength)
	prev := from
	for i := 0; i <= steps; i++ {
		var next geo.PixelPoint
		if i == steps {
			next = to
		} else {
			t := float64(i+1) * dashLength / length
			next = geo.PixelPoint{
				X: from.X + int(dx*t),
				Y: from.Y + int(dy*t),
			}
		}
		if i%2 == 0 {
			drawLine(frame, prev, next, c)
		}
		prev = next
	}
}

// drawLine рисует отрезок алгоритмом Брезенхэма толщиной pathLineWidth,
// пиксели за пределами кадра молча отбрасываются
func drawLine(img *image.RGBA, from, to geo.PixelPoint, c color.RGBA) {
	x0, y0 := from.X, from.Y
	x1, y1 := to.X, to.Y

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		for wy := 0; wy < pathLineWidth; wy++ {
			for wx := 0; wx < pathLineWidth; wx++ {
				setPixel(img, x0+wx, y0+wy, c)
			}
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygon заливает полигон построчно по правилу четности пересечений
func fillPolygon(img *image.RGBA, polygon []geo.PixelPoint, c color.RGBA) {
	if len(polygon) < 3 {
		return
	}

	minY, maxY := polygon[0].Y, polygon[0].Y
	for _, p := range polygon[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= img.Bounds().Dy() {
		maxY = img.Bounds().Dy() - 1
	}

	for y := minY; y <= maxY; y++ {
		var crossings []int
		n := len(polygon)
		for i := 0; i < n; i++ {
			a := polygon[i]
			b := polygon[(i+1)%n]
			if (a.Y > y) != (b.Y > y) {
				x := a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
				crossings = append(crossings, x)
			}
		}
		// Сортируем пересечения слева направо
		for i := 1; i < len(crossings); i++ {
			for j := i; j > 0 && crossings[j] < crossings[j-1]; j-- {
				crossings[j], crossings[j-1] = crossings[j-1], crossings[j]
			}
		}
		for i := 0; i+1 < len(crossings); i += 2 {
			for x := crossings[i]; x <= crossings[i+1]; x++ {
				blendPixel(img, x, y, c)
			}
		}
	}
}

// scaleMarker приводит иконку косилки к ширине markerWidth с сохранением пропорций
func scaleMarker(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	w := markerWidth
	h := int(float64(bounds.Dy()) * float64(w) / float64(bounds.Dx()))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// setPixel устанавливает пиксель с проверкой границ кадра
func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// blendPixel смешивает полупрозрачный цвет с текущим значением пикселя
func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	old := img.RGBAAt(x, y)
	a := uint32(c.A)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(old.R)*(255-a)) / 255),
		G: uint8((uint32(c.G)*a + uint32(old.G)*(255-a)) / 255),
		B: uint8((uint32(c.B)*a + uint32(old.B)*(255-a)) / 255),
		A: 255,
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
