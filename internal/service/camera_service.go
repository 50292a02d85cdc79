package service

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	// Регистрируем декодеры для базовой карты и иконки косилки
	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"

	"mower-map-go/internal/geo"
	"mower-map-go/internal/history"
	"mower-map-go/internal/render"
	"mower-map-go/internal/zones"
	"mower-map-go/pkg/models"
)

// ErrMowerNotFound возвращается для незарегистрированной газонокосилки
var ErrMowerNotFound = errors.New("mower is not registered")

// CameraService хранит рабочее состояние карт по газонокосилкам:
// конфигурацию, рендерер, буфер следа и последнее измерение.
// Классификация и преобразование координат чистые, состояние каждой
// косилки защищено ее собственным замком, косилки независимы.
type CameraService struct {
	logger     *logrus.Logger
	classifier *zones.Classifier
	mapper     *geo.Mapper
	calculator *geo.Calculator

	mu     sync.RWMutex
	states map[string]*mowerState
}

// mowerState рабочее состояние одной газонокосилки
type mowerState struct {
	mu             sync.Mutex
	cfg            *zones.Config
	renderer       *render.Renderer
	trail          *history.Buffer
	lastSample     *models.LocationSample
	lastClass      zones.Classification
	lastPosition   *models.Coordinates
	distanceMeters float64
	samples        int64
}

// NewCameraService создает новый сервис карт
func NewCameraService(logger *logrus.Logger) *CameraService {
	return &CameraService{
		logger:     logger,
		classifier: zones.NewClassifier(),
		mapper:     geo.NewMapper(),
		calculator: geo.NewCalculator(),
		states:     make(map[string]*mowerState),
	}
}

// Register регистрирует газонокосилку в сервисе.
// До применения конфигурации классификация возвращает "нет зоны",
// а рендеринг недоступен.
func (s *CameraService) Register(mowerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[mowerID]; !ok {
		s.states[mowerID] = &mowerState{
			trail: history.NewBuffer(zones.DefaultHistoryLength),
		}
	}
}

// Remove удаляет рабочее состояние газонокосилки
func (s *CameraService) Remove(mowerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, mowerID)
}

// ActiveMowers возвращает ID всех зарегистрированных газонокосилок
func (s *CameraService) ActiveMowers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids
}

// ApplyConfig применяет валидированную конфигурацию: загружает изображения,
// строит рендерер и сбрасывает рабочее состояние.
// Ошибка загрузки базовой карты не фатальна для классификации:
// рендеринг остается недоступным, зоны продолжают классифицироваться.
func (s *CameraService) ApplyConfig(mowerID string, cfg *zones.Config) error {
	state := s.ensureState(mowerID)

	var renderer *render.Renderer
	baseImage, err := loadImage(cfg.MapImagePath)
	if err != nil {
		s.logger.Warnf("Базовая карта для %s недоступна, рендеринг отключен: %v", mowerID, err)
	} else {
		var markerImage image.Image
		if cfg.MarkerImagePath != "" {
			markerImage, err = loadImage(cfg.MarkerImagePath)
			if err != nil {
				s.logger.Warnf("Иконка косилки для %s недоступна, используем маркер-диск: %v", mowerID, err)
				markerImage = nil
			}
		}

		renderer, err = render.NewRenderer(cfg, baseImage, markerImage, s.logger)
		if err != nil {
			s.logger.Errorf("Ошибка создания рендерера для %s: %v", mowerID, err)
			renderer = nil
		}
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.cfg = cfg
	state.renderer = renderer
	state.trail = history.NewBuffer(cfg.HistoryLength)
	state.lastSample = nil
	state.lastClass = zones.Classification{}
	state.lastPosition = nil
	state.distanceMeters = 0
	state.samples = 0

	s.logger.Infof("Конфигурация карты применена для %s, рендеринг доступен: %t", mowerID, renderer != nil)
	return nil
}

// ProcessSample обрабатывает новое измерение позиции: классифицирует зону
// и добавляет пиксельную позицию в буфер следа. Пока косилка на зарядной
// станции и дом настроен, в след попадает домашняя точка.
func (s *CameraService) ProcessSample(mowerID string, sample models.LocationSample) (zones.Classification, error) {
	state, err := s.state(mowerID)
	if err != nil {
		return zones.Classification{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	var classification zones.Classification
	if state.cfg != nil {
		classification = s.classifier.Classify(sample, state.cfg.Zones, state.cfg.Home)
	}

	// Пиксели выводятся из географии, никогда наоборот
	if state.renderer != nil {
		width, height := state.renderer.Size()
		position := sample.Position
		if sample.Docked && state.cfg.Home != nil {
			position = state.cfg.Home.Position
		}
		state.trail.Append(s.mapper.ToPixel(position, state.cfg.Corners, width, height))
	}

	if state.lastPosition != nil {
		state.distanceMeters += s.calculator.DistanceMeters(*state.lastPosition, sample.Position)
	}
	position := sample.Position
	state.lastPosition = &position
	state.lastSample = &sample
	state.lastClass = classification
	state.samples++

	return classification, nil
}

// ZoneState возвращает текущую зону газонокосилки
func (s *CameraService) ZoneState(mowerID string) (*ZoneStateResponse, error) {
	state, err := s.state(mowerID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	response := &ZoneStateResponse{
		MowerID: mowerID,
		Matched: state.lastClass.Matched,
	}
	if state.lastClass.Matched {
		name := state.lastClass.ZoneName
		response.ZoneName = &name
	}
	if state.lastSample != nil {
		response.Docked = state.lastSample.Docked
		ts := state.lastSample.Timestamp
		response.Timestamp = &ts
	}

	return response, nil
}

// Frame рендерит текущий кадр карты в PNG.
// Рендеринг и классификация независимы: недоступный рендеринг
// не влияет на ZoneState.
func (s *CameraService) Frame(mowerID string) ([]byte, error) {
	state, err := s.state(mowerID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.renderer == nil {
		return nil, fmt.Errorf("%w: no map configured for mower %s", render.ErrRenderUnavailable, mowerID)
	}

	var marker geo.PixelPoint
	var docked, hasSample bool
	if state.lastSample != nil {
		width, height := state.renderer.Size()
		marker = s.mapper.ToPixel(state.lastSample.Position, state.cfg.Corners, width, height)
		docked = state.lastSample.Docked
		hasSample = true
	}

	return state.renderer.Render(state.trail.Snapshot(), marker, docked, hasSample)
}

// ResetHistory очищает след и статистику. Вызывается только по явному
// запросу, например при повторной привязке косилки.
func (s *CameraService) ResetHistory(mowerID string) error {
	state, err := s.state(mowerID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.trail.Reset()
	state.lastPosition = nil
	state.distanceMeters = 0
	state.samples = 0

	s.logger.Infof("История позиций для %s очищена", mowerID)
	return nil
}

// Stats возвращает статистику следа газонокосилки
func (s *CameraService) Stats(mowerID string) (*StatsResponse, error) {
	state, err := s.state(mowerID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	response := &StatsResponse{
		MowerID:        mowerID,
		Samples:        state.samples,
		TrailPoints:    state.trail.Len(),
		DistanceMeters: state.distanceMeters,
	}
	if state.lastSample != nil {
		ts := state.lastSample.Timestamp
		response.LastUpdate = &ts
	}

	return response, nil
}

// state возвращает рабочее состояние газонокосилки
func (s *CameraService) state(mowerID string) (*mowerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[mowerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMowerNotFound, mowerID)
	}
	return state, nil
}

// ensureState возвращает рабочее состояние, создавая его при необходимости
func (s *CameraService) ensureState(mowerID string) *mowerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[mowerID]
	if !ok {
		state = &mowerState{
			trail: history.NewBuffer(zones.DefaultHistoryLength),
		}
		s.states[mowerID] = state
	}
	return state
}

// loadImage загружает изображение с диска
func loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return img, nil
}
