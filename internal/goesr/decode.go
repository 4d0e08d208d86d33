package goesr

import (
	"fmt"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// NetCDF variable names inside LVT/LVM granules.
const (
	VarTemperature = "LVT" // K, packed int16
	VarMoisture    = "LVM" // relative humidity factor, packed int16
)

// goesEpoch is the J2000 reference the `t` variable counts seconds from
// (Unix 946728000).
var goesEpoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// Dataset is an open granule file. It is not safe for concurrent use.
type Dataset struct {
	group api.Group
	path  string

	// one-row cube cache, keyed by variable; target-mode sampling hits the
	// same row for many adjacent levels
	cacheVar string
	cacheY   int
	cacheRow interface{}
}

// OpenDataset opens a granule NetCDF file.
func OpenDataset(path string) (*Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open granule %s: %w", path, err)
	}
	return &Dataset{group: g, path: path}, nil
}

// Close releases the underlying file.
func (d *Dataset) Close() error {
	if d.group != nil {
		d.group.Close()
		d.group = nil
	}
	return nil
}

// Projection reads the geostationary projection parameters from the
// goes_imager_projection container variable.
func (d *Dataset) Projection() (pwv.Projection, error) {
	v, err := d.group.GetVariable("goes_imager_projection")
	if err != nil {
		return pwv.Projection{}, fmt.Errorf("%s: missing goes_imager_projection: %w", d.path, err)
	}

	lonOrigin, ok := attrFloat(v.Attributes, "longitude_of_projection_origin")
	if !ok {
		return pwv.Projection{}, fmt.Errorf("%s: missing longitude_of_projection_origin", d.path)
	}
	height, ok := attrFloat(v.Attributes, "perspective_point_height")
	if !ok {
		return pwv.Projection{}, fmt.Errorf("%s: missing perspective_point_height", d.path)
	}
	semiMajor, ok := attrFloat(v.Attributes, "semi_major_axis")
	if !ok {
		return pwv.Projection{}, fmt.Errorf("%s: missing semi_major_axis", d.path)
	}
	semiMinor, ok := attrFloat(v.Attributes, "semi_minor_axis")
	if !ok {
		return pwv.Projection{}, fmt.Errorf("%s: missing semi_minor_axis", d.path)
	}

	return pwv.Projection{
		LonOriginDeg:     lonOrigin,
		SatelliteHeightM: height + semiMajor,
		SemiMajorM:       semiMajor,
		SemiMinorM:       semiMinor,
	}, nil
}

// PressureHpa returns the pressure level vector (hPa).
func (d *Dataset) PressureHpa() ([]float64, error) {
	return d.vector("pressure")
}

// ScanX returns the unpacked E-W scan-angle coordinate vector (radians).
func (d *Dataset) ScanX() ([]float64, error) {
	return d.vector("x")
}

// ScanY returns the unpacked N-S scan-angle coordinate vector (radians).
func (d *Dataset) ScanY() ([]float64, error) {
	return d.vector("y")
}

// MidpointTime returns the granule midpoint time from the `t` variable
// (seconds since the J2000 epoch).
func (d *Dataset) MidpointTime() (time.Time, error) {
	v, err := d.group.GetVariable("t")
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: missing t variable: %w", d.path, err)
	}
	secs, ok := toFloat(v.Values)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: unexpected t type %T", d.path, v.Values)
	}
	return goesEpoch.Add(time.Duration(secs * float64(time.Second))), nil
}

// ProfileColumn returns the full unpacked vertical column of a cube
// variable at one grid cell.
func (d *Dataset) ProfileColumn(name string, yIdx, xIdx int) ([]float64, error) {
	row, pk, err := d.cubeRow(name, yIdx)
	if err != nil {
		return nil, err
	}

	levels, err := d.levelCount(name)
	if err != nil {
		return nil, err
	}
	col := make([]float64, levels)
	for l := 0; l < levels; l++ {
		raw, err := cubeValue(row, xIdx, l)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d,%d,%d]: %w", d.path, name, yIdx, xIdx, l, err)
		}
		col[l] = pk.apply(raw)
	}
	return col, nil
}

// ValueAt returns one unpacked cube value.
func (d *Dataset) ValueAt(name string, yIdx, xIdx, level int) (float64, error) {
	row, pk, err := d.cubeRow(name, yIdx)
	if err != nil {
		return 0, err
	}
	raw, err := cubeValue(row, xIdx, level)
	if err != nil {
		return 0, fmt.Errorf("%s: %s[%d,%d,%d]: %w", d.path, name, yIdx, xIdx, level, err)
	}
	return pk.apply(raw), nil
}

// cubeRow lazily reads one y row of a (y, x, pressure) cube. Reading whole
// LVT/LVM cubes would pull ~250 MB per full-disk granule.
func (d *Dataset) cubeRow(name string, yIdx int) (interface{}, packing, error) {
	getter, err := d.group.GetVarGetter(name)
	if err != nil {
		return nil, packing{}, fmt.Errorf("%s: missing %s variable: %w", d.path, name, err)
	}
	pk := packingFor(getter.Attributes())

	if d.cacheVar == name && d.cacheY == yIdx && d.cacheRow != nil {
		return d.cacheRow, pk, nil
	}
	if int64(yIdx) >= getter.Len() || yIdx < 0 {
		return nil, packing{}, fmt.Errorf("%s: %s row %d out of range [0, %d)", d.path, name, yIdx, getter.Len())
	}
	row, err := getter.GetSlice(int64(yIdx), int64(yIdx)+1)
	if err != nil {
		return nil, packing{}, fmt.Errorf("%s: failed to read %s row %d: %w", d.path, name, yIdx, err)
	}

	d.cacheVar = name
	d.cacheY = yIdx
	d.cacheRow = row
	return row, pk, nil
}

// vector reads and unpacks a 1-D variable.
func (d *Dataset) vector(name string) ([]float64, error) {
	v, err := d.group.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%s: missing %s variable: %w", d.path, name, err)
	}
	out, err := unpackVector(v.Values, packingFor(v.Attributes))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", d.path, name, err)
	}
	return out, nil
}

// levelCount returns the length of the pressure dimension of a cube.
func (d *Dataset) levelCount(name string) (int, error) {
	p, err := d.PressureHpa()
	if err != nil {
		return 0, fmt.Errorf("%s: cannot size %s levels: %w", d.path, name, err)
	}
	return len(p), nil
}
