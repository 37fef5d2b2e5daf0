package dashboard

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/wardstats/wardstats/internal/config"
)

// Selection is the dashboard state carried in the query string. Every page and
// image is a function of it alone.
type Selection struct {
	Metric    string
	DateIndex int
	Region    string
}

// Query encodes the selection as URL query parameters.
func (s Selection) Query() string {
	q := url.Values{}
	q.Set("metric", s.Metric)
	q.Set("date", strconv.Itoa(s.DateIndex))
	q.Set("region", s.Region)
	return q.Encode()
}

// ParseSelection reads a selection from query parameters, applying defaults:
// the configured metric and region, and the most recent month. A click on the
// map image (map.x, map.y) selects the ICB under the cursor, if any.
func (s *Server) ParseSelection(q url.Values) (Selection, error) {
	sel := Selection{
		Metric:    s.cfg.DefaultMetric,
		DateIndex: len(s.data.Dates()) - 1,
		Region:    s.cfg.DefaultRegion,
	}
	if m := q.Get("metric"); m != "" {
		sel.Metric = m
	}
	if !validMetric(s.cfg, sel.Metric) {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownMetric, sel.Metric)
	}
	if d := q.Get("date"); d != "" {
		i, err := strconv.Atoi(d)
		if err != nil || i < 0 || i >= len(s.data.Dates()) {
			return Selection{}, fmt.Errorf("%w: date index %q", ErrNoData, d)
		}
		sel.DateIndex = i
	}
	if r := q.Get("region"); r != "" {
		sel.Region = r
	}
	if code, ok := s.clickedRegion(q); ok {
		sel.Region = code
	}
	return sel, nil
}

func (s *Server) clickedRegion(q url.Values) (string, bool) {
	if s.geo == nil {
		return "", false
	}
	xs, ys := q.Get("map.x"), q.Get("map.y")
	if xs == "" || ys == "" {
		return "", false
	}
	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	if errX != nil || errY != nil {
		return "", false
	}
	lon, lat := s.proj.Inverse(x, y)
	return s.geo.Locate(lon, lat)
}

func validMetric(cfg *config.Config, metric string) bool {
	for _, opt := range cfg.DropdownOptions {
		if opt.Value == metric {
			return true
		}
	}
	return false
}
