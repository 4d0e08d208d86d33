// Package goesr handles GOES-R ABI L2+ vertical profile granules: filename
// metadata, temperature/moisture pairing, and NetCDF decoding.
package goesr

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Product identifies an ABI L2+ profile product.
type Product string

const (
	// ProductTemperature is the Legacy Vertical Temperature Profile.
	ProductTemperature Product = "LVTP"
	// ProductMoisture is the Legacy Vertical Moisture Profile.
	ProductMoisture Product = "LVMP"
)

// Granule is one ABI L2+ profile file, described by its CMIP-style name:
// OR_ABI-L2-LVTPF-M6_G16_s20191941100355_e20191941111122_c20191941112577.nc
type Granule struct {
	Path      string
	Product   Product
	Scene     string // F (full disk), C (CONUS), M1/M2 (mesoscale)
	Mode      int    // ABI scan mode
	Satellite string // GOES series number, e.g. "16"
	Start     time.Time
	End       time.Time
	Created   time.Time
}

// Pair is a temperature granule with its moisture partner from the same scan.
type Pair struct {
	T Granule
	M Granule
}

// Start returns the scan start time shared by both granules.
func (p Pair) Start() time.Time { return p.T.Start }

var granuleRe = regexp.MustCompile(
	`^OR_ABI-L2-(LVTP|LVMP)(F|C|M1|M2)-M(\d)_G(\d{2})_s(\d{14})_e(\d{14})_c(\d{14})\.nc$`)

// ParseFilename parses a granule filename (base name or full path).
func ParseFilename(path string) (Granule, error) {
	name := filepath.Base(path)
	m := granuleRe.FindStringSubmatch(name)
	if m == nil {
		return Granule{}, fmt.Errorf("not an ABI L2 profile granule: %s", name)
	}

	mode, err := strconv.Atoi(m[3])
	if err != nil {
		return Granule{}, fmt.Errorf("invalid scan mode in %s: %w", name, err)
	}
	start, err := parseStamp(m[5])
	if err != nil {
		return Granule{}, fmt.Errorf("invalid start stamp in %s: %w", name, err)
	}
	end, err := parseStamp(m[6])
	if err != nil {
		return Granule{}, fmt.Errorf("invalid end stamp in %s: %w", name, err)
	}
	created, err := parseStamp(m[7])
	if err != nil {
		return Granule{}, fmt.Errorf("invalid creation stamp in %s: %w", name, err)
	}

	return Granule{
		Path:      path,
		Product:   Product(m[1]),
		Scene:     m[2],
		Mode:      mode,
		Satellite: m[4],
		Start:     start,
		End:       end,
		Created:   created,
	}, nil
}

// parseStamp parses the yyyydddhhmmsst timestamps used in GOES filenames
// (ddd is the day of year, t tenths of a second).
func parseStamp(s string) (time.Time, error) {
	if len(s) != 14 {
		return time.Time{}, fmt.Errorf("stamp %q: want 14 digits", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, err
	}
	doy, err := strconv.Atoi(s[4:7])
	if err != nil {
		return time.Time{}, err
	}
	hh, err := strconv.Atoi(s[7:9])
	if err != nil {
		return time.Time{}, err
	}
	mm, err := strconv.Atoi(s[9:11])
	if err != nil {
		return time.Time{}, err
	}
	ss, err := strconv.Atoi(s[11:13])
	if err != nil {
		return time.Time{}, err
	}
	tenth, err := strconv.Atoi(s[13:14])
	if err != nil {
		return time.Time{}, err
	}
	if doy < 1 || doy > 366 {
		return time.Time{}, fmt.Errorf("stamp %q: day of year %d out of range", s, doy)
	}

	t := time.Date(year, 1, 1, hh, mm, ss, tenth*1e8, time.UTC)
	return t.AddDate(0, 0, doy-1), nil
}

// Scan finds profile granules under dir, sorted by start time. Files that
// are not profile granules are ignored.
func Scan(dir string) ([]Granule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var granules []Granule
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".nc") {
			continue
		}
		g, err := ParseFilename(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		granules = append(granules, g)
	}

	sort.Slice(granules, func(i, j int) bool {
		if granules[i].Start.Equal(granules[j].Start) {
			return granules[i].Product < granules[j].Product
		}
		return granules[i].Start.Before(granules[j].Start)
	})
	return granules, nil
}

// MatchPairs matches temperature granules with moisture granules that share
// a scan start time. Granules without a partner are returned separately.
func MatchPairs(granules []Granule) (pairs []Pair, unpaired []Granule) {
	moisture := make(map[time.Time]Granule)
	usedM := make(map[time.Time]bool)
	for _, g := range granules {
		if g.Product == ProductMoisture {
			moisture[g.Start] = g
		}
	}

	for _, g := range granules {
		if g.Product != ProductTemperature {
			continue
		}
		if m, ok := moisture[g.Start]; ok {
			pairs = append(pairs, Pair{T: g, M: m})
			usedM[g.Start] = true
		} else {
			unpaired = append(unpaired, g)
		}
	}
	for _, g := range granules {
		if g.Product == ProductMoisture && !usedM[g.Start] {
			unpaired = append(unpaired, g)
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Start().Before(pairs[j].Start()) })
	sort.Slice(unpaired, func(i, j int) bool { return unpaired[i].Start.Before(unpaired[j].Start) })
	return pairs, unpaired
}
