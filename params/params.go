// Package params loads imaging run settings from json5 files. Fields map
// directly onto the imaging options; missing optional fields fall back to
// the imaging defaults, and every type mismatch is reported with the
// offending key path.
package params

import (
	"fmt"
	"os"

	json "github.com/KevinWang15/go-json5"

	"github.com/radiokit/aperture/imaging"
)

// Settings describes one imaging run.
type Settings struct {
	// Configuration names the antenna layout, e.g. "RING5".
	Configuration string
	// Context selects the partition strategy, e.g. "2d" or "facets_wstack".
	Context string
	// Npixel is the image size per axis; Cellsize is radians per pixel.
	Npixel   int
	Cellsize float64
	// Weighting is "natural" or "uniform".
	Weighting string
	Imaging   imaging.Params
}

// Load reads and validates a json5 settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var jsonTable map[string]interface{}
	if err := json.Unmarshal(data, &jsonTable); err != nil {
		return nil, fmt.Errorf("params: %s: %w", path, err)
	}
	s := &Settings{}
	if msg, ok := validateAndFill(jsonTable, s); !ok {
		return nil, fmt.Errorf("params: %s: %s", path, msg)
	}
	return s, nil
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func validateAndFill(jsonTable map[string]interface{}, s *Settings) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	s.Imaging = imaging.DefaultParams()
	s.Weighting = imaging.WeightNatural
	s.Context = "2d"

	config, ok := getLeafValue(jsonTable, "configuration")
	if !ok {
		msg = "configuration: not found"
		return msg, false
	}
	s.Configuration, ok = config.(string)
	if !ok {
		msg = "configuration: is not a string"
		return msg, false
	}

	context, ok := getLeafValue(jsonTable, "context")
	if ok {
		s.Context, ok = context.(string)
		if !ok {
			msg = "context: is not a string"
			return msg, false
		}
	}

	npixel, ok := getLeafValue(jsonTable, "npixel")
	if !ok {
		msg = "npixel: not found"
		return msg, false
	}
	npix, ok := npixel.(float64)
	if !ok {
		msg = "npixel: is not a float64"
		return msg, false
	}
	s.Npixel = int(npix)

	cellsize, ok := getLeafValue(jsonTable, "cellsize_rad")
	if !ok {
		msg = "cellsize_rad: not found"
		return msg, false
	}
	s.Cellsize, ok = cellsize.(float64)
	if !ok {
		msg = "cellsize_rad: is not a float64"
		return msg, false
	}

	weighting, ok := getLeafValue(jsonTable, "weighting")
	if ok {
		s.Weighting, ok = weighting.(string)
		if !ok {
			msg = "weighting: is not a string"
			return msg, false
		}
	}

	// The imaging group is optional; each field inside is optional too.
	_, ok = getLeafValue(jsonTable, "imaging")
	if !ok {
		return msg, true
	}

	v, ok := getLeafValue(jsonTable, "imaging", "facets")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.facets: is not a float64"
			return msg, false
		}
		s.Imaging.Facets = int(value)
	}

	v, ok = getLeafValue(jsonTable, "imaging", "timeslice")
	if ok {
		switch value := v.(type) {
		case float64:
			s.Imaging.Timeslice = value
		case string:
			if value != "auto" {
				msg = "imaging.timeslice: string value must be \"auto\""
				return msg, false
			}
			s.Imaging.TimesliceAuto = true
		default:
			msg = "imaging.timeslice: is not a float64 or \"auto\""
			return msg, false
		}
	}

	v, ok = getLeafValue(jsonTable, "imaging", "wstack_m")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.wstack_m: is not a float64"
			return msg, false
		}
		s.Imaging.WStack = value
	}

	v, ok = getLeafValue(jsonTable, "imaging", "kernel")
	if ok {
		value, ok := v.(string)
		if !ok {
			msg = "imaging.kernel: is not a string"
			return msg, false
		}
		s.Imaging.Kernel = value
	}

	v, ok = getLeafValue(jsonTable, "imaging", "wstep_lambda")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.wstep_lambda: is not a float64"
			return msg, false
		}
		s.Imaging.WStep = value
	}

	v, ok = getLeafValue(jsonTable, "imaging", "oversampling")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.oversampling: is not a float64"
			return msg, false
		}
		s.Imaging.Oversampling = int(value)
	}

	v, ok = getLeafValue(jsonTable, "imaging", "support")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.support: is not a float64"
			return msg, false
		}
		s.Imaging.Support = int(value)
	}

	v, ok = getLeafValue(jsonTable, "imaging", "padding")
	if ok {
		value, ok := v.(float64)
		if !ok {
			msg = "imaging.padding: is not a float64"
			return msg, false
		}
		s.Imaging.Padding = int(value)
	}

	return msg, true
}
