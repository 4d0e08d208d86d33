package pwv

import (
	"math"
	"testing"
	"time"
)

func TestHorizontalCelestialPole(t *testing.T) {
	// The north celestial pole sits at an altitude equal to the site
	// latitude, due north, at any time.
	loc := Location{Name: "apache point", LatitudeDeg: 32.780278, LongitudeDeg: -105.820278}
	when := time.Date(2019, 7, 14, 6, 0, 0, 0, time.UTC)

	alt, az := Horizontal(0, 90, when, loc)

	if math.Abs(degrees(alt)-loc.LatitudeDeg) > 1e-6 {
		t.Errorf("altitude of celestial pole = %v deg, want %v", degrees(alt), loc.LatitudeDeg)
	}
	azDeg := degrees(az)
	if !(azDeg < 1e-3 || azDeg > 360-1e-3) {
		t.Errorf("azimuth of celestial pole = %v deg, want ~0 (north)", azDeg)
	}
}

func TestHorizontalRanges(t *testing.T) {
	loc := Location{LatitudeDeg: -30.2407, LongitudeDeg: -70.7366} // Cerro Tololo
	when := time.Date(2020, 1, 1, 3, 30, 0, 0, time.UTC)

	for ra := 0.0; ra < 360; ra += 45 {
		for dec := -80.0; dec <= 80; dec += 40 {
			alt, az := Horizontal(ra, dec, when, loc)
			if alt < -math.Pi/2 || alt > math.Pi/2 {
				t.Fatalf("alt out of range for ra=%v dec=%v: %v", ra, dec, alt)
			}
			if az < 0 || az >= 2*math.Pi {
				t.Fatalf("az out of range for ra=%v dec=%v: %v", ra, dec, az)
			}
		}
	}
}

func TestHorizontalSouthPoleNeverRisesNorth(t *testing.T) {
	// From a northern site the south celestial pole stays below the horizon.
	loc := Location{LatitudeDeg: 45, LongitudeDeg: 10}
	when := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)

	alt, _ := Horizontal(180, -90, when, loc)
	if alt >= 0 {
		t.Errorf("south celestial pole altitude = %v, want < 0 from latitude 45N", alt)
	}
}

func TestHorizontalTimeDependence(t *testing.T) {
	// An equatorial target must move as the Earth rotates.
	loc := Location{LatitudeDeg: 32.78, LongitudeDeg: -105.82}
	t0 := time.Date(2019, 7, 14, 4, 0, 0, 0, time.UTC)

	alt0, _ := Horizontal(150, 10, t0, loc)
	alt1, _ := Horizontal(150, 10, t0.Add(3*time.Hour), loc)
	if alt0 == alt1 {
		t.Error("altitude should change over three hours of Earth rotation")
	}
}
