package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/format"
	"github.com/wardstats/wardstats/internal/geo"
)

//go:embed templates/*.html
var templates embed.FS

// Server renders the dashboard over HTTP.
type Server struct {
	cfg     *config.Config
	data    *Dataset
	geo     *geo.Set
	proj    Projection
	palette Palette
	page    *template.Template
	log     zerolog.Logger
}

// NewServer builds a dashboard server over a loaded dataset and boundary set.
// boundaries may be nil, in which case the map is blank and clicks are ignored.
func NewServer(cfg *config.Config, data *Dataset, boundaries *geo.Set, log zerolog.Logger) (*Server, error) {
	if _, ok := data.Latest(); !ok {
		return nil, ErrNoData
	}
	palette, err := NewPalette(cfg.NHSColours)
	if err != nil {
		return nil, err
	}
	page, err := template.New("page.html").Funcs(template.FuncMap{
		"css": func(s string) template.CSS { return template.CSS(s) },
	}).ParseFS(templates, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	if boundaries == nil {
		boundaries = geo.NewSet(nil)
	}
	return &Server{
		cfg:     cfg,
		data:    data,
		geo:     boundaries,
		proj:    NewProjection(boundaries.Bounds(), cfg.MapCentre, MapWidth, MapHeight),
		palette: palette,
		page:    page,
		log:     log,
	}, nil
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /map.png", s.handleMap)
	mux.HandleFunc("GET /timeseries.png", s.handleTimeseries)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	h := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(mux)
	return hlog.NewHandler(s.log)(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request) (Selection, bool) {
	sel, err := s.ParseSelection(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return Selection{}, false
	}
	return sel, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownMetric):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNoData):
		status = http.StatusNotFound
	}
	hlog.FromRequest(r).Warn().Err(err).Int("status", status).Msg("request failed")
	http.Error(w, err.Error(), status)
}

// Row is one line of the value table under the map.
type Row struct {
	Code     string
	Name     string
	Value    string
	Colour   string
	Selected bool
}

// Option is one entry of the metric selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Cfg        *config.Config
	Sel        Selection
	MapURL     template.URL
	SeriesURL  template.URL
	Options    []Option
	DateLabel  string
	MaxDate    int
	FirstLabel string
	LastLabel  string
	RegionName string
	Rows       []Row
	ScaleLow   string
	ScaleHigh  string
	ScaleMin   string
	ScaleMax   string
	MapWidth   int
	MapHeight  int
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	records, err := s.data.FilterDate(s.data.Dates()[sel.DateIndex])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	spec := s.cfg.Formatters[sel.Metric]
	scale := s.palette.MapScale(sel.Metric, records)
	labels := s.data.Labels()
	pd := pageData{
		Cfg:        s.cfg,
		Sel:        sel,
		MapURL:     template.URL("/map.png?" + sel.Query()),
		SeriesURL:  template.URL("/timeseries.png?" + sel.Query()),
		DateLabel:  labels[sel.DateIndex],
		MaxDate:    len(labels) - 1,
		FirstLabel: labels[0],
		LastLabel:  labels[len(labels)-1],
		RegionName: s.geo.Name(sel.Region),
		ScaleLow:   CSS(scale.Low),
		ScaleHigh:  CSS(scale.High),
		ScaleMin:   format.Value(spec, scale.Range.Min),
		ScaleMax:   format.Value(spec, scale.Range.Max),
		MapWidth:   MapWidth,
		MapHeight:  MapHeight,
	}
	for _, opt := range s.cfg.DropdownOptions {
		pd.Options = append(pd.Options, Option{Value: opt.Value, Label: opt.Label, Selected: opt.Value == sel.Metric})
	}
	for i := range records {
		rec := &records[i]
		v, _ := rec.Value(sel.Metric)
		pd.Rows = append(pd.Rows, Row{
			Code:     rec.ICBCode,
			Name:     s.geo.Name(rec.ICBCode),
			Value:    ValueLabel(spec, sel.Metric, rec),
			Colour:   CSS(scale.Colour(v)),
			Selected: rec.ICBCode == sel.Region,
		})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, pd); err != nil {
		s.fail(w, r, fmt.Errorf("render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	records, err := s.data.FilterDate(s.data.Dates()[sel.DateIndex])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	scale := s.palette.MapScale(sel.Metric, records)
	if err := RenderMap(&buf, s.geo, s.proj, scale, sel.Metric, records, sel.Region); err != nil {
		s.fail(w, r, err)
		return
	}
	writePNG(w, &buf)
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	view := TimeseriesView{
		Title:   s.geo.Name(sel.Region),
		YTitle:  AxisTitle(s.cfg.MetricLabel(sel.Metric)),
		Spec:    s.cfg.Formatters[sel.Metric],
		Metric:  sel.Metric,
		Records: s.data.Region(sel.Region),
	}
	var buf bytes.Buffer
	if err := RenderTimeseries(&buf, s.palette, view); err != nil {
		if errors.Is(err, ErrNoData) {
			err = fmt.Errorf("%w: region %s", err, sel.Region)
		}
		s.fail(w, r, err)
		return
	}
	writePNG(w, &buf)
}

func writePNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	buf.WriteTo(w)
}
