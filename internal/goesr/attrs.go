package goesr

import (
	"fmt"
	"math"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// toFloat converts any scalar NetCDF numeric value (or a one-element slice
// of one) to float64.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}

	// Attributes frequently come back as one-element slices.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 {
		return toFloat(rv.Index(0).Interface())
	}
	return 0, false
}

// attrFloat reads a numeric attribute from an attribute map.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, has := attrs.Get(key)
	if !has {
		return 0, false
	}
	return toFloat(v)
}

// packing holds the scale/offset/fill parameters of a packed variable.
type packing struct {
	scale   float64
	offset  float64
	fill    float64
	hasFill bool
}

// packingFor reads the CF packing attributes; a variable without them gets
// the identity packing.
func packingFor(attrs api.AttributeMap) packing {
	p := packing{scale: 1}
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		p.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		p.offset = v
	}
	if v, ok := attrFloat(attrs, "_FillValue"); ok {
		p.fill = v
		p.hasFill = true
	}
	return p
}

// apply unpacks one raw value. Fill values become NaN.
func (p packing) apply(raw float64) float64 {
	if p.hasFill && raw == p.fill {
		return math.NaN()
	}
	return raw*p.scale + p.offset
}

// unpackVector converts a 1-D variable of any numeric element type to
// float64, applying the packing.
func unpackVector(raw interface{}, p packing) ([]float64, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected 1-D variable, got %T", raw)
	}
	out := make([]float64, rv.Len())
	for i := range out {
		f, ok := toFloat(rv.Index(i).Interface())
		if !ok {
			return nil, fmt.Errorf("unsupported element type %T", rv.Index(i).Interface())
		}
		out[i] = p.apply(f)
	}
	return out, nil
}

// cubeValue extracts raw[0][x][level] from the nested slices returned by a
// single-row GetSlice on a (y, x, pressure) cube.
func cubeValue(raw interface{}, xIdx, level int) (float64, error) {
	v := reflect.ValueOf(raw)
	for _, idx := range []int{0, xIdx, level} {
		if v.Kind() != reflect.Slice {
			return 0, fmt.Errorf("expected 3-D cube row, got %T", raw)
		}
		if idx < 0 || idx >= v.Len() {
			return 0, fmt.Errorf("index %d out of range [0, %d)", idx, v.Len())
		}
		v = v.Index(idx)
	}
	f, ok := toFloat(v.Interface())
	if !ok {
		return 0, fmt.Errorf("unsupported cube element type %T", v.Interface())
	}
	return f, nil
}
