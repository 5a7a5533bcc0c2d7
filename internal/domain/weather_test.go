package domain

import "testing"

func TestClassifyWeather(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, WeatherClear},
		{1, WeatherCloudy},
		{2, WeatherCloudy},
		{3, WeatherCloudy},
		{4, WeatherUnknown},
		{45, WeatherFoggy},
		{46, WeatherFoggy},
		{48, WeatherFoggy},
		{51, WeatherRainy},
		{60, WeatherRainy},
		{67, WeatherRainy},
		{68, WeatherUnknown},
		{71, WeatherSnowy},
		{75, WeatherSnowy},
		{77, WeatherSnowy},
		{80, WeatherShowers},
		{81, WeatherShowers},
		{82, WeatherShowers},
		{90, WeatherUnknown},
		{95, WeatherThunderstorm},
		{99, WeatherThunderstorm},
		{-1, WeatherUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyWeather(tt.code); got != tt.want {
			t.Errorf("ClassifyWeather(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestNewWeatherDerivesDescription(t *testing.T) {
	w := NewWeather(18.5, 61)
	if w.Description != WeatherRainy {
		t.Errorf("Expected %q, got %q", WeatherRainy, w.Description)
	}
	if w.Temp != 18.5 || w.Code != 61 {
		t.Errorf("Unexpected weather %+v", w)
	}
}

func TestDemoCatalogReturnsCopy(t *testing.T) {
	first := DemoCatalog()
	if len(first) != 5 {
		t.Fatalf("Expected 5 demo items, got %d", len(first))
	}
	first[0].SearchTags[0] = "mutated"
	first[1].ID = "mutated"

	second := DemoCatalog()
	if second[0].SearchTags[0] == "mutated" || second[1].ID == "mutated" {
		t.Error("DemoCatalog must not share state between calls")
	}

	seen := make(map[string]bool)
	for _, it := range second {
		if seen[it.ID] {
			t.Errorf("Duplicate demo id %q", it.ID)
		}
		seen[it.ID] = true
	}
}
