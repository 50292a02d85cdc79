package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"mower-map-go/internal/service"
	"mower-map-go/pkg/models"
)

// PositionClient клиент для опроса внешнего API позиций газонокосилок.
// Ядро карты не управляет подключением к источнику позиций, этот клиент
// лишь периодически забирает статус и передает его в CameraService.
type PositionClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewPositionClient создает новый клиент API позиций
func NewPositionClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *PositionClient {
	return &PositionClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchStatus запрашивает текущий статус газонокосилки
func (c *PositionClient) FetchStatus(mowerID string) (*models.PositionStatusResponse, error) {
	url := fmt.Sprintf("%s/mowers/%s/status", c.baseURL, mowerID)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания HTTP запроса: %w", err)
	}

	c.logger.Debugf("Отправка GET запроса на %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API позиций вернул ошибку: статус %d, тело: %s", resp.StatusCode, string(respBody))
	}

	var status models.PositionStatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("ошибка парсинга JSON ответа: %w", err)
	}

	return &status, nil
}

// Poller периодически опрашивает API позиций для всех зарегистрированных
// газонокосилок и передает измерения в сервис карт
type Poller struct {
	client        *PositionClient
	cameraService *service.CameraService
	interval      time.Duration
	logger        *logrus.Logger
}

// NewPoller создает новый опросчик позиций
func NewPoller(client *PositionClient, cameraService *service.CameraService, interval time.Duration, logger *logrus.Logger) *Poller {
	return &Poller{
		client:        client,
		cameraService: cameraService,
		interval:      interval,
		logger:        logger,
	}
}

// Run запускает цикл опроса до отмены контекста
func (p *Poller) Run(ctx context.Context) {
	p.logger.Infof("Запуск опроса API позиций с интервалом %v", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Опрос API позиций остановлен")
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce опрашивает все зарегистрированные газонокосилки один раз
func (p *Poller) pollOnce() {
	for _, mowerID := range p.cameraService.ActiveMowers() {
		status, err := p.client.FetchStatus(mowerID)
		if err != nil {
			p.logger.Warnf("Не удалось получить статус %s: %v", mowerID, err)
			continue
		}

		sample := models.LocationSample{
			Position:  status.Position,
			Docked:    isDocked(status.Activity),
			Timestamp: status.Timestamp,
		}

		if _, err := p.cameraService.ProcessSample(mowerID, sample); err != nil {
			p.logger.Warnf("Не удалось обработать измерение %s: %v", mowerID, err)
		}
	}
}

// isDocked определяет по активности, что косилка на зарядной станции
func isDocked(activity string) bool {
	switch activity {
	case "CHARGING", "PARKED_IN_CS":
		return true
	default:
		return false
	}
}
