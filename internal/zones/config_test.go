package zones

import (
	"errors"
	"testing"

	"mower-map-go/internal/geo"
	"mower-map-go/pkg/models"
)

func validCorners() geo.CalibrationCorners {
	return geo.CalibrationCorners{
		TopLeft:     models.Coordinates{Lat: 45.0, Lon: -93.0},
		BottomRight: models.Coordinates{Lat: 44.0, Lon: -92.0},
	}
}

func TestBuildConfigValid(t *testing.T) {
	cfg, err := BuildConfig(validCorners(), []Zone{gardenZone()}, testHome(), models.RGB{R: 255}, 0, "map.png", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HistoryLength != DefaultHistoryLength {
		t.Errorf("expected default history length %d, got %d", DefaultHistoryLength, cfg.HistoryLength)
	}
	if len(cfg.Zones) != 1 || cfg.Zones[0].Name != "Garden" {
		t.Errorf("zones not carried over: %+v", cfg.Zones)
	}
}

func TestBuildConfigRejectsDegenerateCorners(t *testing.T) {
	corners := geo.CalibrationCorners{
		TopLeft:     models.Coordinates{Lat: 45.0, Lon: -93.0},
		BottomRight: models.Coordinates{Lat: 45.0, Lon: -92.0},
	}

	_, err := BuildConfig(corners, nil, nil, models.RGB{}, 50, "map.png", "")
	if !errors.Is(err, geo.ErrInvalidCalibration) {
		t.Errorf("expected ErrInvalidCalibration, got %v", err)
	}
}

func TestBuildConfigRejectsBadZone(t *testing.T) {
	bad := Zone{
		Name: "Broken",
		Vertices: []models.Coordinates{
			{Lat: 44.0, Lon: -93.0},
			{Lat: 45.0, Lon: -92.0},
		},
	}

	_, err := BuildConfig(validCorners(), []Zone{bad}, nil, models.RGB{}, 50, "map.png", "")
	if !errors.Is(err, geo.ErrInvalidZoneGeometry) {
		t.Errorf("expected ErrInvalidZoneGeometry, got %v", err)
	}
}

func TestBuildConfigRejectsEmptyAndDuplicateNames(t *testing.T) {
	unnamed := gardenZone()
	unnamed.Name = ""
	if _, err := BuildConfig(validCorners(), []Zone{unnamed}, nil, models.RGB{}, 50, "map.png", ""); err == nil {
		t.Error("zone with empty name must be rejected")
	}

	if _, err := BuildConfig(validCorners(), []Zone{gardenZone(), gardenZone()}, nil, models.RGB{}, 50, "map.png", ""); err == nil {
		t.Error("duplicate zone names must be rejected")
	}
}

func TestBuildConfigRejectsBadHome(t *testing.T) {
	home := &HomeZone{Position: models.Coordinates{Lat: 99.0, Lon: 0.0}}

	if _, err := BuildConfig(validCorners(), nil, home, models.RGB{}, 50, "map.png", ""); err == nil {
		t.Error("home position out of WGS84 must be rejected")
	}
}
