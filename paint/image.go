package paint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// Image is a decoded image together with the identifier it was loaded from.
type Image struct {
	Src string
	image.Image
}

// ImageHandle is an image that may still be loading.
type ImageHandle struct {
	*Future[*Image]
	src string
}

// Src returns the source identifier the handle was created with. It is
// available before the image resolves.
func (h *ImageHandle) Src() string { return h.src }

func newImageHandle(src string) *ImageHandle {
	return &ImageHandle{Future: newFuture[*Image](), src: src}
}

// ResolvedImage wraps an already decoded image.
func ResolvedImage(src string, img image.Image) *ImageHandle {
	h := newImageHandle(src)
	h.settle(&Image{Src: src, Image: img}, nil)
	return h
}

// FailedImage returns a handle that rejects with err wrapped in ErrResolveImage.
func FailedImage(src string, err error) *ImageHandle {
	h := newImageHandle(src)
	h.settle(nil, fmt.Errorf("%w: %s: %w", ErrResolveImage, src, err))
	return h
}

// LoadImage decodes the file at path in the background.
func LoadImage(path string) *ImageHandle {
	h := newImageHandle(path)
	go func() {
		img, err := decodeFile(path)
		h.settle(img, err)
	}()
	return h
}

// ImageFromBytes decodes data in the background; name becomes the image's Src.
func ImageFromBytes(name string, data []byte) *ImageHandle {
	h := newImageHandle(name)
	go func() {
		img, err := decodeBytes(name, data)
		h.settle(img, err)
	}()
	return h
}

// ImageLoader loads images relative to BaseDir. Concurrent loads of the same
// path share a single decode.
type ImageLoader struct {
	BaseDir string

	group singleflight.Group
}

// NewImageLoader returns a loader rooted at baseDir.
func NewImageLoader(baseDir string) *ImageLoader {
	return &ImageLoader{BaseDir: baseDir}
}

// Load starts loading path and returns its handle immediately. Relative paths
// are joined onto BaseDir; Src keeps the path as given.
func (l *ImageLoader) Load(path string) *ImageHandle {
	h := newImageHandle(path)
	full := path
	if l.BaseDir != "" && !filepath.IsAbs(full) {
		full = filepath.Join(l.BaseDir, full)
	}
	go func() {
		v, err, _ := l.group.Do(full, func() (any, error) {
			return decodeFile(full)
		})
		if err != nil {
			h.settle(nil, err)
			return
		}
		// 共享的解码结果不可修改，这里只替换 Src。
		img := v.(*Image)
		h.settle(&Image{Src: path, Image: img.Image}, nil)
	}()
	return h
}

func decodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取图片 %s 失败: %w", ErrResolveImage, path, err)
	}
	return decodeBytes(path, data)
}

func decodeBytes(src string, data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片 %s 失败: %w", ErrResolveImage, src, err)
	}
	return &Image{Src: src, Image: img}, nil
}
