package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"lms/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	documentPath = "/forms/chromium/convert/html"
	imagePath    = "/forms/chromium/screenshot/html"
)

// Options configure an HTTPRenderer
type Options struct {
	ServiceURL    string // headless chromium conversion service
	VerifyBaseURL string
	AssetDir      string
	AssetBaseURL  string
	Timeout       time.Duration
}

// HTTPRenderer converts the certificate HTML through a Gotenberg compatible
// service and stores the results under AssetDir.
type HTTPRenderer struct {
	client *resty.Client
	opts   Options
	log    *zap.Logger
}

func NewHTTPRenderer(opts Options, log *zap.Logger) *HTTPRenderer {
	client := resty.New().
		SetBaseURL(opts.ServiceURL).
		SetTimeout(opts.Timeout)
	return &HTTPRenderer{client: client, opts: opts, log: log}
}

func (r *HTTPRenderer) Render(ctx context.Context, s Snapshot) (*Assets, error) {
	html, err := HTML(s, r.opts.VerifyBaseURL)
	if err != nil {
		return nil, fmt.Errorf("execute certificate template: %w", err)
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var document, image []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		document, err = r.convert(gctx, documentPath, html, map[string]string{
			"paperWidth":      "11.7",
			"paperHeight":     "8.27",
			"marginTop":       "0",
			"marginBottom":    "0",
			"marginLeft":      "0",
			"marginRight":     "0",
			"printBackground": "true",
		})
		return err
	})
	g.Go(func() error {
		var err error
		image, err = r.convert(gctx, imagePath, html, map[string]string{
			"width":  "1123",
			"height": "794",
			"format": "png",
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Only write once both conversions succeeded so a certificate never points at a stale pair.
	docName := DocumentName(s.CertificateNumber)
	if _, err := utils.WriteFile(r.opts.AssetDir, docName, document); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	imgName := ImageName(s.CertificateNumber)
	if _, err := utils.WriteFile(r.opts.AssetDir, imgName, image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	r.log.Info("certificate rendered", zap.String("certificateNumber", s.CertificateNumber))
	return &Assets{
		DocumentURL: utils.GetFileURL(r.opts.AssetBaseURL, docName),
		ImageURL:    utils.GetFileURL(r.opts.AssetBaseURL, imgName),
	}, nil
}

func (r *HTTPRenderer) convert(ctx context.Context, path string, html []byte, form map[string]string) ([]byte, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetFileReader("files", "index.html", bytes.NewReader(html)).
		SetFormData(form).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("render %s: status=%d body=%s", path, resp.StatusCode(), resp.String())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("render %s: empty response", path)
	}
	return resp.Body(), nil
}
