package proxy

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// forwardedHeaders are copied from the client request to the upstream.
var forwardedHeaders = []string{"Authorization", "X-Client-ID", "Accept", "Accept-Language"}

// hopHeaders are not copied back from the upstream response.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Content-Length":    true,
}

// ============================================================
// Proxy
// ============================================================

// Proxy forwards requests to one upstream service, keeping path and query.
type Proxy struct {
	target string
	client *http.Client
	log    *zap.Logger
}

func New(target string, timeout time.Duration, log *zap.Logger) *Proxy {
	return &Proxy{
		target: strings.TrimRight(target, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log.Named("proxy"),
	}
}

// Handler forwards the request as-is to the same path on the upstream.
func (p *Proxy) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.Forward(c, p.target+c.OriginalURL())
	}
}

// Forward proxies any method to targetURL, re-encoding multipart bodies.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	contentType := c.Get("Content-Type")
	p.log.Debug("forward",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("content_type", contentType),
		zap.Int("content_length", len(c.Body())),
		zap.String("target", targetURL),
	)

	var (
		body io.Reader
		err  error
	)
	if strings.HasPrefix(contentType, "multipart/form-data") {
		body, contentType, err = p.multipartBody(c)
		if err != nil {
			p.log.Warn("invalid multipart body", zap.Error(err))
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid multipart data"})
		}
	} else {
		body = bytes.NewReader(c.Body())
	}

	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, body)
	if err != nil {
		p.log.Error("build request", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, h := range forwardedHeaders {
		if v := c.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("upstream unreachable", zap.String("target", targetURL), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return p.copyResponse(c, resp)
}

func (p *Proxy) multipartBody(c fiber.Ctx) (io.Reader, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, files := range form.File {
		for _, fileHeader := range files {
			file, err := fileHeader.Open()
			if err != nil {
				return nil, "", fmt.Errorf("open %s: %w", key, err)
			}

			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, key, fileHeader.Filename))
			h.Set("Content-Type", fileHeader.Header.Get("Content-Type"))

			part, err := writer.CreatePart(h)
			if err == nil {
				_, err = io.Copy(part, file)
			}
			file.Close()
			if err != nil {
				return nil, "", fmt.Errorf("copy %s: %w", key, err)
			}
		}
	}
	for key, values := range form.Value {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

func (p *Proxy) copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Warn("read upstream response", zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && !hopHeaders[key] {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}

// Ping reports whether the upstream answers its readiness probe.
func (p *Proxy) Ping(c fiber.Ctx) error {
	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, p.target+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return nil
}
