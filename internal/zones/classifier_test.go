package zones

import (
	"testing"
	"time"

	"mower-map-go/pkg/models"
)

func gardenZone() Zone {
	return Zone{
		Name: "Garden",
		Vertices: []models.Coordinates{
			{Lat: 44.0, Lon: -93.0},
			{Lat: 44.0, Lon: -92.0},
			{Lat: 45.0, Lon: -92.0},
			{Lat: 45.0, Lon: -93.0},
		},
		Color:   models.RGB{R: 0, G: 255, B: 0},
		Display: true,
	}
}

func testHome() *HomeZone {
	return &HomeZone{
		Position: models.Coordinates{Lat: 44.1, Lon: -92.9},
		Color:    models.RGB{R: 0, G: 0, B: 255},
	}
}

func sampleAt(lat, lon float64, docked bool) models.LocationSample {
	return models.LocationSample{
		Position:  models.Coordinates{Lat: lat, Lon: lon},
		Docked:    docked,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClassifyInsideZone(t *testing.T) {
	c := NewClassifier()

	result := c.Classify(sampleAt(44.5, -92.5, false), []Zone{gardenZone()}, nil)
	if !result.Matched || result.ZoneName != "Garden" {
		t.Errorf("expected Garden, got %+v", result)
	}
}

func TestClassifyNoMatchIsNotAnError(t *testing.T) {
	c := NewClassifier()

	result := c.Classify(sampleAt(50.0, -90.0, false), []Zone{gardenZone()}, nil)
	if result.Matched || result.ZoneName != "" {
		t.Errorf("expected no match, got %+v", result)
	}
}

func TestClassifyHomeOverride(t *testing.T) {
	c := NewClassifier()

	// Косилка на зарядке внутри Garden все равно классифицируется как Home
	result := c.Classify(sampleAt(44.5, -92.5, true), []Zone{gardenZone()}, testHome())
	if result.ZoneName != HomeZoneName {
		t.Errorf("docked sample with home configured must classify as Home, got %+v", result)
	}
}

func TestClassifyDockedWithoutHome(t *testing.T) {
	c := NewClassifier()

	// Без настроенного дома зарядка не влияет на классификацию
	result := c.Classify(sampleAt(44.5, -92.5, true), []Zone{gardenZone()}, nil)
	if result.ZoneName != "Garden" {
		t.Errorf("docked sample without home should fall through to zones, got %+v", result)
	}
}

func TestClassifyDeclarationOrderWins(t *testing.T) {
	c := NewClassifier()

	second := gardenZone()
	second.Name = "Backyard"

	// Точка лежит в обеих зонах, побеждает объявленная первой
	result := c.Classify(sampleAt(44.5, -92.5, false), []Zone{gardenZone(), second}, nil)
	if result.ZoneName != "Garden" {
		t.Errorf("first declared zone must win, got %+v", result)
	}

	result = c.Classify(sampleAt(44.5, -92.5, false), []Zone{second, gardenZone()}, nil)
	if result.ZoneName != "Backyard" {
		t.Errorf("first declared zone must win after reorder, got %+v", result)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()

	sample := sampleAt(44.5, -92.5, false)
	zoneList := []Zone{gardenZone()}
	first := c.Classify(sample, zoneList, testHome())
	for i := 0; i < 10; i++ {
		if got := c.Classify(sample, zoneList, testHome()); got != first {
			t.Fatalf("classification is not deterministic: %+v vs %+v", got, first)
		}
	}
}
