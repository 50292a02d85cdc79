package history

import (
	"sync"

	"mower-map-go/internal/geo"
)

// Buffer ограниченный буфер истории позиций для отрисовки следа.
// Хранит пиксельные координаты от старых к новым, при переполнении
// вытесняет самую старую запись. Append и Snapshot защищены мьютексом
// этого буфера: каждая косилка имеет свой буфер и свой замок,
// косилки не сериализуются друг против друга.
type Buffer struct {
	mu     sync.Mutex
	points []geo.PixelPoint
	limit  int
}

// NewBuffer создает буфер с заданной максимальной длиной
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 50
	}
	return &Buffer{
		points: make([]geo.PixelPoint, 0, limit),
		limit:  limit,
	}
}

// Append добавляет позицию в конец буфера, вытесняя самую старую при переполнении
func (b *Buffer) Append(p geo.PixelPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.points) >= b.limit {
		copy(b.points, b.points[1:])
		b.points = b.points[:len(b.points)-1]
	}
	b.points = append(b.points, p)
}

// Snapshot возвращает копию содержимого от старых к новым.
// Копия не зависит от последующих Append, поэтому отрисовка детерминирована.
func (b *Buffer) Snapshot() []geo.PixelPoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]geo.PixelPoint, len(b.points))
	copy(snapshot, b.points)
	return snapshot
}

// Reset очищает буфер. Вызывается только по явному внешнему событию,
// например при повторной привязке косилки, никогда автоматически.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points = b.points[:0]
}

// Len возвращает текущее количество позиций в буфере
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.points)
}

// Limit возвращает максимальную длину буфера
func (b *Buffer) Limit() int {
	return b.limit
}
