package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// ErrAssetMissing 表示背景等可选素材文件不存在。
var ErrAssetMissing = errors.New("asset missing")

// Backgrounds 缓存按目标像素尺寸拉伸后的背景图，同一路径只解码和缩放一次。
type Backgrounds struct {
	mu    sync.Mutex
	cache map[bgKey]*image.RGBA
}

type bgKey struct {
	path string
	w, h int
}

// Stretched 返回拉伸到 w×h 像素的背景图（不保持宽高比）。
// 文件不存在时返回 ErrAssetMissing，且不缓存结果，以便文件补上后再次尝试。
func (b *Backgrounds) Stretched(path string, w, h int) (*image.RGBA, error) {
	if path == "" {
		return nil, ErrAssetMissing
	}
	key := bgKey{path: path, w: w, h: h}
	b.mu.Lock()
	defer b.mu.Unlock()
	if img, ok := b.cache[key]; ok {
		return img, nil
	}

	src, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if b.cache == nil {
		b.cache = map[bgKey]*image.RGBA{}
	}
	b.cache[key] = dst
	return dst, nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("背景图 %s: %w", path, ErrAssetMissing)
		}
		return nil, fmt.Errorf("读取背景图 %s 失败: %w", path, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码背景图 %s 失败: %w", path, err)
	}
	return img, nil
}
