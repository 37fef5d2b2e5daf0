// Package fetch downloads monthly workbooks linked from the statistics homepage.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/normalize"
)

const workbookExt = normalize.WorkbookExt

// Downloader mirrors the workbooks published on the homepage into a directory.
type Downloader struct {
	homepage string
	dir      string
	http     *resty.Client
	log      zerolog.Logger
}

// Result counts what a Download run did.
type Result struct {
	Links      int
	Downloaded int
	Skipped    int
}

// NewDownloader creates a Downloader for cfg.HomepageURL writing into cfg.RawDir().
// Requests are not retried.
func NewDownloader(cfg *config.Config, log zerolog.Logger) *Downloader {
	client := resty.New()
	client.SetHeader("User-Agent", cfg.HTTP.UserAgent)
	if cfg.HTTP.Timeout > 0 {
		client.SetTimeout(cfg.HTTP.Timeout)
	}
	return &Downloader{
		homepage: cfg.HomepageURL,
		dir:      cfg.RawDir(),
		http:     client,
		log:      log,
	}
}

// Links fetches the homepage and returns its workbook links.
func (d *Downloader) Links(ctx context.Context) ([]Link, error) {
	body, err := d.get(ctx, d.homepage)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse homepage: %w", err)
	}
	base, err := url.Parse(d.homepage)
	if err != nil {
		return nil, fmt.Errorf("parse homepage url: %w", err)
	}
	return DataLinks(doc, base), nil
}

// Download saves every linked workbook that is not already present, or all of
// them when overwrite is set. The first network or link-format error aborts the run.
func (d *Downloader) Download(ctx context.Context, overwrite bool) (*Result, error) {
	links, err := d.Links(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, fmt.Errorf("create raw dir: %w", err)
	}

	res := &Result{Links: len(links)}
	for _, link := range links {
		name, err := LinkFilename(link.Text)
		if err != nil {
			return res, err
		}
		path := filepath.Join(d.dir, name)
		if !overwrite && exists(path) {
			d.log.Info().Str("file", name).Msg("already downloaded, skipping")
			res.Skipped++
			continue
		}
		if err := d.downloadFile(ctx, link.Href, path); err != nil {
			return res, err
		}
		d.log.Info().Str("file", path).Str("url", link.Href).Msg("downloaded")
		res.Downloaded++
	}
	return res, nil
}

func (d *Downloader) downloadFile(ctx context.Context, href, path string) error {
	body, err := d.get(ctx, href)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (d *Downloader) get(ctx context.Context, target string) ([]byte, error) {
	res, err := d.http.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s: unexpected status %s", target, res.Status())
	}
	return res.Body(), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
