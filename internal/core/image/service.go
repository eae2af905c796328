package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strings"

	_ "image/gif"
	_ "image/png"

	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// DefaultMaxDimension 長邊超過此像素時等比縮小
const DefaultMaxDimension = 1200

// Service 圖片編碼服務
type Service struct {
	maxSizeBytes int64
	maxDimension int
	client       *httpclient.Client
}

// NewService 創建新的圖片編碼服務；maxDimension <= 0 使用 1200px
func NewService(maxSizeBytes int64, maxDimension int, client *httpclient.Client) *Service {
	if client == nil {
		client = httpclient.New(httpclient.Options{Provider: "image-download"})
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Service{
		maxSizeBytes: maxSizeBytes,
		maxDimension: maxDimension,
		client:       client,
	}
}

// Encode 讀取圖片來源並轉為 JPEG base64
//
// source 可為本機路徑、file:// URI、http(s) URL 或 data URI。
func (s *Service) Encode(ctx context.Context, source string) (*common.EncodedImage, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, common.InvalidInputError("image source is empty", nil)
	}

	raw, err := s.load(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.EncodeBytes(raw)
}

// EncodeBytes 將原始圖片位元組轉為 JPEG base64
func (s *Service) EncodeBytes(raw []byte) (*common.EncodedImage, error) {
	if len(raw) == 0 {
		return nil, common.InvalidInputError("image is empty", nil)
	}
	if int64(len(raw)) > s.maxSizeBytes {
		return nil, common.InvalidInputError(
			fmt.Sprintf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes), nil)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, common.InvalidInputError("failed to decode image", err)
	}

	img = downscale(img, s.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, common.InvalidInputError("failed to encode image as JPEG", err)
	}

	common.LogDebug("Image encoded",
		zap.String("format", format),
		zap.Int("original_size", len(raw)),
		zap.Int("encoded_size", buf.Len()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	return &common.EncodedImage{
		MimeType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		Size:     buf.Len(),
	}, nil
}

func (s *Service) load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return s.download(ctx, source)
	case strings.HasPrefix(source, "data:image/"):
		return decodeDataURI(source)
	default:
		path := strings.TrimPrefix(source, "file://")
		info, err := os.Stat(path)
		if err != nil {
			return nil, common.InvalidInputError("image file is not readable", err)
		}
		if info.Size() > s.maxSizeBytes {
			return nil, common.InvalidInputError(
				fmt.Sprintf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes), nil)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, common.InvalidInputError("image file is not readable", err)
		}
		return data, nil
	}
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	req, err := s.client.R(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Get(req, url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func decodeDataURI(uri string) ([]byte, error) {
	parts := strings.SplitN(uri, ",", 2)
	if len(parts) != 2 || !strings.HasSuffix(parts[0], ";base64") {
		return nil, common.InvalidInputError("invalid base64 data URI", nil)
	}
	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, common.InvalidInputError("failed to decode base64 data", err)
	}
	return data, nil
}

// downscale 長邊超過 maxDimension 時等比縮小
func downscale(src image.Image, maxDimension int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDimension <= 0 || (w <= maxDimension && h <= maxDimension) {
		return src
	}

	if w >= h {
		h = h * maxDimension / w
		w = maxDimension
	} else {
		w = w * maxDimension / h
		h = maxDimension
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
