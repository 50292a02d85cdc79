package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mower-map-go/internal/model"
)

// MowerRepository интерфейс для работы с газонокосилками и их конфигурацией
type MowerRepository interface {
	Create(mower *model.Mower) error
	GetByID(id string) (*model.Mower, error)
	List(page, pageSize int) ([]*model.Mower, int64, error)
	Delete(id string) error
	SaveConfig(mowerID string, config *model.MapConfig, zones []model.Zone) error
}

// mowerRepository реализация MowerRepository
type mowerRepository struct {
	db *gorm.DB
}

// NewMowerRepository создает новый instance MowerRepository
func NewMowerRepository(db *gorm.DB) MowerRepository {
	return &mowerRepository{
		db: db,
	}
}

// Create создает новую газонокосилку в базе данных
func (r *mowerRepository) Create(mower *model.Mower) error {
	if err := r.db.Create(mower).Error; err != nil {
		return fmt.Errorf("failed to create mower: %w", err)
	}
	return nil
}

// GetByID получает газонокосилку с конфигурацией и зонами по ID
func (r *mowerRepository) GetByID(id string) (*model.Mower, error) {
	var mower model.Mower
	err := r.db.Preload("Config").
		Preload("Zones", func(db *gorm.DB) *gorm.DB {
			return db.Order("zones.position ASC")
		}).
		Preload("Zones.Vertices", func(db *gorm.DB) *gorm.DB {
			return db.Order("zone_vertices.seq ASC")
		}).
		Where("id = ?", id).First(&mower).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("mower with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get mower: %w", err)
	}
	return &mower, nil
}

// List получает список газонокосилок с пагинацией
func (r *mowerRepository) List(page, pageSize int) ([]*model.Mower, int64, error) {
	var mowers []*model.Mower
	var total int64

	// Подсчитываем общее количество
	if err := r.db.Model(&model.Mower{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count mowers: %w", err)
	}

	// Получаем газонокосилки с пагинацией
	offset := (page - 1) * pageSize
	err := r.db.Preload("Config").
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&mowers).Error

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list mowers: %w", err)
	}

	return mowers, total, nil
}

// Delete удаляет газонокосилку вместе с конфигурацией и зонами
func (r *mowerRepository) Delete(id string) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := r.deleteZones(tx, id); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("mower_id = ?", id).Delete(&model.MapConfig{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete map config: %w", err)
	}

	result := tx.Where("id = ?", id).Delete(&model.Mower{})
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete mower: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("mower with id %s not found", id)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveConfig заменяет конфигурацию карты и зоны газонокосилки.
// Старые зоны и вершины удаляются, новые создаются в одной транзакции.
func (r *mowerRepository) SaveConfig(mowerID string, config *model.MapConfig, zones []model.Zone) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Заменяем конфигурацию карты
	if err := tx.Where("mower_id = ?", mowerID).Delete(&model.MapConfig{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete old map config: %w", err)
	}

	config.ID = 0 // Обнуляем ID для auto-increment
	config.MowerID = mowerID
	if err := tx.Create(config).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create map config: %w", err)
	}

	// Заменяем зоны
	if err := r.deleteZones(tx, mowerID); err != nil {
		tx.Rollback()
		return err
	}

	for i := range zones {
		zones[i].ID = 0
		zones[i].MowerID = mowerID
		zones[i].Position = i
		for j := range zones[i].Vertices {
			zones[i].Vertices[j].ID = 0
			zones[i].Vertices[j].Seq = j
		}
		if err := tx.Create(&zones[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create zone %d: %w", i, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// deleteZones удаляет зоны газонокосилки вместе с вершинами
func (r *mowerRepository) deleteZones(tx *gorm.DB, mowerID string) error {
	var zoneIDs []uint
	if err := tx.Model(&model.Zone{}).Where("mower_id = ?", mowerID).Pluck("id", &zoneIDs).Error; err != nil {
		return fmt.Errorf("failed to collect zone ids: %w", err)
	}

	if len(zoneIDs) > 0 {
		if err := tx.Where("zone_id IN ?", zoneIDs).Delete(&model.ZoneVertex{}).Error; err != nil {
			return fmt.Errorf("failed to delete zone vertices: %w", err)
		}
	}

	if err := tx.Where("mower_id = ?", mowerID).Delete(&model.Zone{}).Error; err != nil {
		return fmt.Errorf("failed to delete zones: %w", err)
	}

	return nil
}
