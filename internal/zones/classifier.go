package zones

import (
	"mower-map-go/internal/geo"
	"mower-map-go/pkg/models"
)

// HomeZoneName фиксированная метка зоны, пока косилка на зарядной станции
const HomeZoneName = "Home"

// Classification результат классификации позиции
type Classification struct {
	ZoneName string `json:"zone_name"` // Имя активной зоны, пустое если нет совпадения
	Matched  bool   `json:"matched"`   // Найдена ли зона
}

// Classifier определяет активную зону для позиции газонокосилки
type Classifier struct{}

// NewClassifier создает новый классификатор зон
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify классифицирует позицию по правилам, в порядке приоритета:
//  1. Косилка на зарядной станции и дом настроен — всегда "Home",
//     независимо от географической позиции.
//  2. Зоны проверяются в порядке объявления, первая содержащая точку побеждает.
//     Зоны могут пересекаться, пересечение разрешается порядком, не площадью.
//  3. Ни одна зона не содержит точку — валидный результат "нет зоны", не ошибка.
//
// Чистая функция от своих аргументов: один и тот же семпл против одной и той же
// конфигурации всегда дает один и тот же результат.
func (c *Classifier) Classify(sample models.LocationSample, zoneList []Zone, home *HomeZone) Classification {
	if sample.Docked && home != nil {
		return Classification{ZoneName: HomeZoneName, Matched: true}
	}

	for _, zone := range zoneList {
		if geo.PointInPolygon(sample.Position, zone.Vertices) {
			return Classification{ZoneName: zone.Name, Matched: true}
		}
	}

	return Classification{}
}
