package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

const (
	defaultMaxAttachmentBytes = 150 * 1024
	defaultMaxImagePixels     = 16_000_000
	defaultMaxImageSide       = 8000
)

// BoxSize is a bounding box in pixels
type BoxSize struct {
	Width  uint
	Height uint
}

// AttachmentConfig bounds what an uploaded image may be
type AttachmentConfig struct {
	// MaxBytes is the largest accepted upload
	MaxBytes int64
	// MaxPixels caps width × height before decoding
	MaxPixels int
	// MaxSide caps either dimension before decoding
	MaxSide int
	// LogoBox and SignatureBox are the scaled display sizes
	LogoBox      BoxSize
	SignatureBox BoxSize
	Logger       *zap.Logger
}

// Upload is a raw attachment as received from the client
type Upload struct {
	Kind        document.AttachmentKind
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
	// OpenErr is set instead of Reader when the stored upload could not be opened
	OpenErr error
}

// Image is a processed attachment ready to embed. Data is always PNG.
type Image struct {
	Kind       document.AttachmentKind
	Data       []byte
	Width      int
	Height     int
	SourceType string
}

// DataURL returns the image as a data URL for HTML engines
func (i *Image) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// AttachmentProcessor validates, decodes and scales uploaded images
type AttachmentProcessor struct {
	config *AttachmentConfig
	logger *zap.Logger
}

// NewAttachmentProcessor creates a processor with defaults for unset limits
func NewAttachmentProcessor(config *AttachmentConfig) *AttachmentProcessor {
	if config == nil {
		config = &AttachmentConfig{}
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaultMaxAttachmentBytes
	}
	if config.MaxPixels <= 0 {
		config.MaxPixels = defaultMaxImagePixels
	}
	if config.MaxSide <= 0 {
		config.MaxSide = defaultMaxImageSide
	}
	if config.LogoBox.Width == 0 || config.LogoBox.Height == 0 {
		config.LogoBox = BoxSize{Width: 600, Height: 300}
	}
	if config.SignatureBox.Width == 0 || config.SignatureBox.Height == 0 {
		config.SignatureBox = BoxSize{Width: 480, Height: 180}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentProcessor{config: config, logger: logger}
}

// MaxBytes returns the configured upload ceiling
func (p *AttachmentProcessor) MaxBytes() int64 {
	return p.config.MaxBytes
}

// Process checks one upload and returns the scaled image.
// Any problem is reported as an AttachmentError; the caller drops the image and carries on.
func (p *AttachmentProcessor) Process(ctx context.Context, up Upload) (*Image, *document.AttachmentError) {
	if up.OpenErr != nil || up.Reader == nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "failed to open upload", up.OpenErr)
	}
	if up.Size > p.config.MaxBytes {
		return nil, p.tooLarge(up.Kind, up.Size)
	}

	declared := strings.ToLower(strings.TrimSpace(up.ContentType))
	if !strings.HasPrefix(declared, "image/") {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentNotImage,
			fmt.Sprintf("content type %q is not an image", up.ContentType), nil)
	}

	data, err := io.ReadAll(io.LimitReader(up.Reader, p.config.MaxBytes+1))
	if err != nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "failed to read upload", err)
	}
	if int64(len(data)) > p.config.MaxBytes {
		return nil, p.tooLarge(up.Kind, int64(len(data)))
	}
	if len(data) == 0 {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "upload is empty", nil)
	}

	sniffed := mimetype.Detect(data)
	if !sniffed.Is("image/png") && !sniffed.Is("image/jpeg") && !sniffed.Is("image/gif") {
		if strings.HasPrefix(sniffed.String(), "image/") {
			return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnsupportedFormat,
				fmt.Sprintf("image format %s is not supported, use PNG, JPEG or GIF", sniffed.String()), nil)
		}
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentNotImage,
			fmt.Sprintf("content is %s, not an image", sniffed.String()), nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "failed to read image header", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		cfg.Width > p.config.MaxSide || cfg.Height > p.config.MaxSide ||
		cfg.Width*cfg.Height > p.config.MaxPixels {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentBadDimensions,
			fmt.Sprintf("image dimensions %dx%d are out of bounds", cfg.Width, cfg.Height), nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "request cancelled", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "failed to decode image", err)
	}

	box := p.boxFor(up.Kind)
	scaled := resize.Thumbnail(box.Width, box.Height, img, resize.Lanczos3)

	// PDF embedding only handles 8-bit channels.
	bounds := scaled.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), scaled, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, document.NewAttachmentError(up.Kind, document.AttachmentUnreadable, "failed to encode image", err)
	}

	p.logger.Debug("Attachment processed",
		zap.String("attachment", up.Kind.String()),
		zap.String("filename", up.Filename),
		zap.String("source_type", sniffed.String()),
		zap.Int("source_width", cfg.Width),
		zap.Int("source_height", cfg.Height),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)

	return &Image{
		Kind:       up.Kind,
		Data:       buf.Bytes(),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		SourceType: sniffed.String(),
	}, nil
}

func (p *AttachmentProcessor) boxFor(kind document.AttachmentKind) BoxSize {
	if kind == document.AttachmentSignature {
		return p.config.SignatureBox
	}
	return p.config.LogoBox
}

func (p *AttachmentProcessor) tooLarge(kind document.AttachmentKind, size int64) *document.AttachmentError {
	return document.NewAttachmentError(kind, document.AttachmentTooLarge,
		fmt.Sprintf("attachment is %d bytes, limit is %d", size, p.config.MaxBytes), nil)
}
