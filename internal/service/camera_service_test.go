package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mower-map-go/internal/geo"
	"mower-map-go/internal/render"
	"mower-map-go/internal/zones"
	"mower-map-go/pkg/models"
)

// writeTestMap пишет белую базовую карту 100x100 во временный каталог
func writeTestMap(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "map.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test map: %v", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode test map: %v", err)
	}
	return path
}

func cameraConfig(t *testing.T, mapPath string) *zones.Config {
	t.Helper()

	corners := geo.CalibrationCorners{
		TopLeft:     models.Coordinates{Lat: 45.0, Lon: -93.0},
		BottomRight: models.Coordinates{Lat: 44.0, Lon: -92.0},
	}
	zoneList := []zones.Zone{
		{
			Name: "Garden",
			Vertices: []models.Coordinates{
				{Lat: 44.0, Lon: -93.0},
				{Lat: 44.0, Lon: -92.0},
				{Lat: 45.0, Lon: -92.0},
				{Lat: 45.0, Lon: -93.0},
			},
			Color:   models.RGB{G: 255},
			Display: true,
		},
	}
	home := &zones.HomeZone{
		Position: models.Coordinates{Lat: 44.5, Lon: -92.5},
		Color:    models.RGB{B: 255},
	}

	cfg, err := zones.BuildConfig(corners, zoneList, home, models.RGB{R: 255}, 10, mapPath, "")
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	return cfg
}

func locationSample(lat, lon float64, docked bool) models.LocationSample {
	return models.LocationSample{
		Position:  models.Coordinates{Lat: lat, Lon: lon},
		Docked:    docked,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCameraServiceUnknownMower(t *testing.T) {
	svc := NewCameraService(discardLogger())

	if _, err := svc.ProcessSample("ghost", locationSample(44.5, -92.5, false)); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("ProcessSample: expected ErrMowerNotFound, got %v", err)
	}
	if _, err := svc.ZoneState("ghost"); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("ZoneState: expected ErrMowerNotFound, got %v", err)
	}
	if _, err := svc.Frame("ghost"); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("Frame: expected ErrMowerNotFound, got %v", err)
	}
	if _, err := svc.Stats("ghost"); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("Stats: expected ErrMowerNotFound, got %v", err)
	}
	if err := svc.ResetHistory("ghost"); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("ResetHistory: expected ErrMowerNotFound, got %v", err)
	}
}

func TestCameraServiceRegisteredWithoutConfig(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	// До применения конфигурации измерения принимаются, но зона не определяется
	classification, err := svc.ProcessSample("mower-1", locationSample(44.5, -92.5, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classification.Matched {
		t.Errorf("no zones configured, expected no match, got %+v", classification)
	}

	if _, err := svc.Frame("mower-1"); !errors.Is(err, render.ErrRenderUnavailable) {
		t.Errorf("expected ErrRenderUnavailable, got %v", err)
	}
}

func TestCameraServiceClassifiesWhenMapImageMissing(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	// Базовая карта недоступна: рендеринг отключен, классификация живет
	cfg := cameraConfig(t, filepath.Join(t.TempDir(), "missing.png"))
	if err := svc.ApplyConfig("mower-1", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	classification, err := svc.ProcessSample("mower-1", locationSample(44.5, -92.5, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !classification.Matched || classification.ZoneName != "Garden" {
		t.Errorf("expected Garden, got %+v", classification)
	}

	if _, err := svc.Frame("mower-1"); !errors.Is(err, render.ErrRenderUnavailable) {
		t.Errorf("expected ErrRenderUnavailable, got %v", err)
	}

	// След не накапливается без рендерера
	stats, err := svc.Stats("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TrailPoints != 0 {
		t.Errorf("expected empty trail without a renderer, got %d", stats.TrailPoints)
	}
	if stats.Samples != 1 {
		t.Errorf("expected 1 sample, got %d", stats.Samples)
	}
}

func TestCameraServicePipeline(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	if err := svc.ApplyConfig("mower-1", cameraConfig(t, writeTestMap(t))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	samples := []models.LocationSample{
		locationSample(44.3, -92.7, false),
		locationSample(44.4, -92.6, false),
		locationSample(44.5, -92.5, false),
	}
	for _, sample := range samples {
		if _, err := svc.ProcessSample("mower-1", sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	zoneState, err := svc.ZoneState("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !zoneState.Matched || zoneState.ZoneName == nil || *zoneState.ZoneName != "Garden" {
		t.Errorf("expected Garden, got %+v", zoneState)
	}

	frame, err := svc.Frame("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(frame)); err != nil {
		t.Errorf("frame is not a valid PNG: %v", err)
	}

	stats, err := svc.Stats("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Samples != 3 || stats.TrailPoints != 3 {
		t.Errorf("expected 3 samples and 3 trail points, got %+v", stats)
	}
	if stats.DistanceMeters <= 0 {
		t.Errorf("expected positive traveled distance, got %f", stats.DistanceMeters)
	}
	if stats.LastUpdate == nil {
		t.Error("expected last update timestamp")
	}
}

func TestCameraServiceDockedSampleClassifiesAsHome(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	if err := svc.ApplyConfig("mower-1", cameraConfig(t, writeTestMap(t))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	classification, err := svc.ProcessSample("mower-1", locationSample(44.2, -92.8, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classification.ZoneName != zones.HomeZoneName {
		t.Errorf("docked sample must classify as Home, got %+v", classification)
	}

	zoneState, err := svc.ZoneState("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !zoneState.Docked {
		t.Error("zone state must report docked")
	}
}

func TestCameraServiceTrailRespectsHistoryLength(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	// Длина истории в конфигурации: 10 точек
	if err := svc.ApplyConfig("mower-1", cameraConfig(t, writeTestMap(t))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 25; i++ {
		sample := locationSample(44.1+float64(i)*0.01, -92.9, false)
		if _, err := svc.ProcessSample("mower-1", sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats, err := svc.Stats("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TrailPoints != 10 {
		t.Errorf("expected trail capped at 10 points, got %d", stats.TrailPoints)
	}
	if stats.Samples != 25 {
		t.Errorf("expected 25 samples, got %d", stats.Samples)
	}
}

func TestCameraServiceResetHistory(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	if err := svc.ApplyConfig("mower-1", cameraConfig(t, writeTestMap(t))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ProcessSample("mower-1", locationSample(44.5, -92.5, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ResetHistory("mower-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.Stats("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TrailPoints != 0 || stats.Samples != 0 || stats.DistanceMeters != 0 {
		t.Errorf("expected empty stats after reset, got %+v", stats)
	}
}

func TestCameraServiceApplyConfigResetsRuntimeState(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")

	mapPath := writeTestMap(t)
	if err := svc.ApplyConfig("mower-1", cameraConfig(t, mapPath)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ProcessSample("mower-1", locationSample(44.5, -92.5, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторная конфигурация начинает след заново
	if err := svc.ApplyConfig("mower-1", cameraConfig(t, mapPath)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.Stats("mower-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TrailPoints != 0 || stats.Samples != 0 {
		t.Errorf("expected runtime state reset after reconfiguration, got %+v", stats)
	}
}

func TestCameraServiceRemove(t *testing.T) {
	svc := NewCameraService(discardLogger())
	svc.Register("mower-1")
	svc.Register("mower-2")

	svc.Remove("mower-1")

	if _, err := svc.Stats("mower-1"); !errors.Is(err, ErrMowerNotFound) {
		t.Errorf("expected ErrMowerNotFound after removal, got %v", err)
	}
	// Соседние косилки не затронуты
	if _, err := svc.Stats("mower-2"); err != nil {
		t.Errorf("unexpected error for the remaining mower: %v", err)
	}

	ids := svc.ActiveMowers()
	if len(ids) != 1 || ids[0] != "mower-2" {
		t.Errorf("expected only mower-2 active, got %v", ids)
	}
}
