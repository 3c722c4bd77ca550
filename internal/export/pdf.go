// Package export renders study notes as PDF documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	noteFont       = "note"
	emptyNote      = "(no note)"
	footer         = "Generated by Precision Assembly AI"
	snapshotName   = "snapshot"
	maxImageHeight = 110.0 // mm
)

var ErrUnsupportedImage = errors.New("snapshot must be PNG or JPEG")

// Note is everything that goes into one document.
type Note struct {
	AssemblyName string
	Text         string
	Snapshot     []byte
	CreatedAt    time.Time
}

// Renderer builds A4 portrait documents. With a font path it embeds that
// TrueType font so non-Latin notes render; otherwise the core Helvetica
// font is used and unsupported runes are dropped.
type Renderer struct {
	fontPath string
}

func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

// Filename is the attachment name for a document created at t.
func Filename(assemblyName string, t time.Time) string {
	if assemblyName == "" {
		assemblyName = "Model"
	}
	return fmt.Sprintf("StudyNote_%s_%d.pdf", unsafeChars.ReplaceAllString(assemblyName, "_"), t.UnixMilli())
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Render writes the document to w.
func (r *Renderer) Render(w io.Writer, n Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	name := n.AssemblyName
	if name == "" {
		name = "Model"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(name+" - Study Note", true)

	family, text := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		pdf.AddUTF8Font(noteFont, "", r.fontPath)
		family, text = noteFont, func(s string) string { return s }
	}
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	// Header
	pdf.SetFont(family, "", 22)
	pdf.SetTextColor(17, 17, 17)
	pdf.MultiCell(width, 10, text(name+" - Study Note"), "", "L", false)
	pdf.SetFont(family, "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(width, 6, n.CreatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(51, 51, 51)
	pdf.SetLineWidth(0.6)
	y := pdf.GetY() + 2
	pdf.Line(left, y, left+width, y)
	pdf.SetY(y + 6)

	if len(n.Snapshot) > 0 {
		if err := r.snapshot(pdf, family, n.Snapshot, left, width); err != nil {
			return err
		}
	}

	// Body
	body := strings.TrimSpace(n.Text)
	if body == "" {
		body = emptyNote
	}
	pdf.SetFont(family, "", 11)
	pdf.SetTextColor(51, 51, 51)
	pdf.MultiCell(width, 6.5, text(body), "", "L", false)

	// Footer
	pdf.Ln(12)
	pdf.SetDrawColor(221, 221, 221)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, pdf.GetY(), left+width, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont(family, "", 8)
	pdf.SetTextColor(136, 136, 136)
	pdf.CellFormat(width, 5, footer, "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// RenderBytes renders into memory.
func (r *Renderer) RenderBytes(n Note) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) snapshot(pdf *fpdf.Fpdf, family string, data []byte, left, width float64) error {
	imageType, err := ImageType(data)
	if err != nil {
		return err
	}
	info := pdf.RegisterImageOptionsReader(snapshotName, fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if pdf.Err() {
		return fmt.Errorf("%w: %w", ErrUnsupportedImage, pdf.Error())
	}

	// fit into the text width, capped in height, keeping the aspect ratio
	w, h := width, width*info.Height()/info.Width()
	if h > maxImageHeight {
		w, h = w*maxImageHeight/h, maxImageHeight
	}
	x := left + (width-w)/2
	pdf.ImageOptions(snapshotName, x, pdf.GetY(), w, h, false, fpdf.ImageOptions{ImageType: imageType}, 0, "")
	pdf.SetY(pdf.GetY() + h + 2)

	pdf.SetFont(family, "", 8)
	pdf.SetTextColor(136, 136, 136)
	pdf.CellFormat(width, 5, "Captured 3D View", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return nil
}

// ImageType sniffs a snapshot and returns the fpdf image type.
func ImageType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	default:
		return "", ErrUnsupportedImage
	}
}
