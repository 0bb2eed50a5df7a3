// Package imaging уменьшает загружаемые фотографии перед сохранением.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// CompressThreshold файлы меньше этого размера сохраняются как есть.
	CompressThreshold = 500 * 1024
	// MaxWidth максимальная ширина после уменьшения.
	MaxWidth = 1200
	// JPEGQuality качество перекодирования.
	JPEGQuality = 80
	// MaxPixels предельная площадь кадра, декодер выделяет память пропорционально ей.
	MaxPixels = 50_000_000
)

// ErrUnsupportedType файл не является поддерживаемым изображением.
var ErrUnsupportedType = errors.New("imaging: unsupported image type")

// ErrTooManyPixels размеры изображения превышают MaxPixels.
var ErrTooManyPixels = errors.New("imaging: image dimensions too large")

var allowedMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Kind результат определения типа по магическим байтам.
type Kind struct {
	MIME      string
	Extension string
}

// Detect определяет тип изображения по первым байтам файла.
func Detect(head []byte) (Kind, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Kind{}, ErrUnsupportedType
	}
	ext, ok := allowedMimeTypes[kind.MIME.Value]
	if !ok {
		return Kind{}, ErrUnsupportedType
	}
	return Kind{MIME: kind.MIME.Value, Extension: ext}, nil
}

// Result подготовленное к сохранению изображение.
type Result struct {
	Data      []byte
	Kind      Kind
	Reencoded bool
}

// Compress уменьшает крупные изображения до MaxWidth и перекодирует их в JPEG.
// Маленькие файлы и файлы, которые не удалось декодировать, возвращаются без изменений.
// Кадр больше MaxPixels отклоняется до декодирования.
func Compress(data []byte) (Result, error) {
	kind, err := Detect(data)
	if err != nil {
		return Result{}, err
	}

	original := Result{Data: data, Kind: kind}

	// Заголовок читается без декодирования пикселей.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return original, nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Result{}, ErrTooManyPixels
	}

	if len(data) < CompressThreshold {
		return original, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return original, nil
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > MaxWidth {
		height = height * MaxWidth / width
		width = MaxWidth
	}
	if height < 1 {
		height = 1
	}

	// Прозрачные области PNG/GIF/WebP заливаем белым, в JPEG нет альфа-канала.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return original, nil
	}

	return Result{
		Data:      buf.Bytes(),
		Kind:      Kind{MIME: "image/jpeg", Extension: "jpg"},
		Reencoded: true,
	}, nil
}
