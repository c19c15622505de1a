package paint

import "errors"

var (
	// ErrAlreadyPainting is returned when BeginPainting is called twice on one builder.
	ErrAlreadyPainting = errors.New("canvasbuilder: 画布已开始绘制，不能重复调用 BeginPainting")
	// ErrClosed is returned by barriers issued after Close.
	ErrClosed = errors.New("canvasbuilder: painter 已关闭")
	// ErrResolveImage wraps image load/decode failures.
	ErrResolveImage = errors.New("canvasbuilder: 图片解析失败")
	// ErrEncode wraps failures writing the exported surface.
	ErrEncode = errors.New("canvasbuilder: 导出画布失败")
	// ErrUnsupportedStyle is returned by engines for handles they cannot use.
	ErrUnsupportedStyle = errors.New("canvasbuilder: 不支持的样式")
	// ErrUnknownColor is returned by engines for unparseable named styles.
	ErrUnknownColor = errors.New("canvasbuilder: 无法识别的颜色")
)
