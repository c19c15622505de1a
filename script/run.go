// Package script replays a parsed paint script on a CanvasBuilder.
package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ByLCY/canvasbuilder/binding"
	"github.com/ByLCY/canvasbuilder/dsl"
	"github.com/ByLCY/canvasbuilder/paint"
)

// Options configures Run.
type Options struct {
	// Data is decoded JSON used to fill ${path} placeholders in strings.
	Data any
	// BaseDir resolves relative image paths.
	BaseDir string
	// OutDir resolves relative export paths. Empty means the working directory.
	OutDir string
}

// Result is what a run produced.
type Result struct {
	// Painter is nil when the script never started painting.
	Painter paint.CanvasPainter
	// Exports lists the export paths in script order.
	Exports []string
}

// Run issues every command of doc on builder in order. Painting starts at
// an explicit "begin" or at the first drawing command. Run returns once every
// export has settled; the first failure is returned. The caller owns the
// returned painter and must Close it.
func Run(ctx context.Context, doc *dsl.Script, builder paint.CanvasBuilder, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("脚本为空")
	}
	if builder == nil {
		return nil, fmt.Errorf("script: 缺少 CanvasBuilder")
	}
	r := &runner{
		builder: builder,
		opts:    opts,
		images:  paint.NewImageLoader(opts.BaseDir),
		res:     &Result{},
	}
	for _, cmd := range doc.Commands {
		if err := r.exec(cmd); err != nil {
			return r.res, fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
		}
	}
	if r.res.Painter == nil {
		return r.res, nil
	}
	r.pending = append(r.pending, pending{name: "settle", f: r.res.Painter.Settle()})

	var errs []error
	for _, p := range r.pending {
		if _, err := p.f.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return r.res, err
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
	}
	if len(errs) > 0 {
		return r.res, errs[0]
	}
	return r.res, nil
}

type pending struct {
	name string
	f    *paint.Future[paint.CanvasPainter]
}

type runner struct {
	builder paint.CanvasBuilder
	opts    Options
	images  *paint.ImageLoader
	res     *Result
	pending []pending
}

func (r *runner) painter() (paint.CanvasPainter, error) {
	if r.res.Painter != nil {
		return r.res.Painter, nil
	}
	p, err := r.builder.BeginPainting()
	if err != nil {
		return nil, err
	}
	r.res.Painter = p
	return p, nil
}

func (r *runner) exec(cmd *dsl.Command) error {
	switch cmd.Name {
	case "size":
		if r.res.Painter != nil {
			return fmt.Errorf("size 必须位于绘制命令之前")
		}
		n, err := numbers(cmd, 2)
		if err != nil {
			return err
		}
		r.builder.SetSize(int(n[0]), int(n[1]))
		return nil
	case "font":
		if r.res.Painter != nil {
			return fmt.Errorf("font 必须位于绘制命令之前")
		}
		return r.registerFont(cmd)
	case "begin":
		if r.res.Painter != nil {
			return paint.ErrAlreadyPainting
		}
		_, err := r.painter()
		return err
	}

	p, err := r.painter()
	if err != nil {
		return err
	}
	switch cmd.Name {
	case "clear":
		style, err := r.positionalStyle(cmd)
		if err != nil {
			return err
		}
		p.Clear(style)
	case "fill-style":
		style, err := r.positionalStyle(cmd)
		if err != nil {
			return err
		}
		p.SetFillStyle(style)
	case "stroke-style":
		style, err := r.positionalStyle(cmd)
		if err != nil {
			return err
		}
		p.SetStrokeStyle(style)
	case "line-width":
		n, err := numbers(cmd, 1)
		if err != nil {
			return err
		}
		p.SetLineWidth(n[0])
	case "font-family":
		family, err := r.positionalText(cmd, 0)
		if err != nil {
			return err
		}
		p.SetFontFamily(family)
	case "font-size":
		n, err := numbers(cmd, 1)
		if err != nil {
			return err
		}
		p.SetFontSize(n[0])
	case "fill-rect":
		rect, err := rectangle(cmd)
		if err != nil {
			return err
		}
		var styles []paint.Style
		if v := cmd.Option("style"); v != nil {
			style, err := r.style(v)
			if err != nil {
				return err
			}
			styles = append(styles, style)
		}
		p.FillRectangle(rect, styles...)
	case "stroke-rect":
		rect, err := rectangle(cmd)
		if err != nil {
			return err
		}
		var strokes []paint.Stroke
		stroke, set := paint.Stroke{}, false
		if v := cmd.Option("style"); v != nil {
			style, err := r.style(v)
			if err != nil {
				return err
			}
			stroke, set = stroke.WithStyle(style), true
		}
		if v := cmd.Option("width"); v != nil {
			width, ok := v.Pixels()
			if !ok {
				return fmt.Errorf("width 需要数字，得到 %s", v.Kind())
			}
			stroke, set = stroke.WithWidth(width), true
		}
		if set {
			strokes = append(strokes, stroke)
		}
		p.StrokeRectangle(rect, strokes...)
	case "text":
		return r.fillText(cmd, p)
	case "image":
		return r.drawImage(cmd, p)
	case "export":
		path, err := r.positionalText(cmd, 0)
		if err != nil {
			return err
		}
		if r.opts.OutDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(r.opts.OutDir, path)
		}
		r.res.Exports = append(r.res.Exports, path)
		r.pending = append(r.pending, pending{name: "export " + path, f: p.Export(path)})
	default:
		return fmt.Errorf("未知命令 %s", cmd.Name)
	}
	return nil
}

func (r *runner) registerFont(cmd *dsl.Command) error {
	path, err := r.positionalText(cmd, 0)
	if err != nil {
		return err
	}
	family, err := r.optionText(cmd, "family")
	if err != nil {
		return err
	}
	if family == "" {
		return fmt.Errorf("font 需要 family=")
	}
	style, err := r.optionText(cmd, "style")
	if err != nil {
		return err
	}
	weight, err := r.optionText(cmd, "weight")
	if err != nil {
		return err
	}
	r.builder.RegisterFont(path, paint.Font{Family: family, Style: style, Weight: weight})
	return nil
}

func (r *runner) fillText(cmd *dsl.Command, p paint.CanvasPainter) error {
	args := cmd.Positional()
	if len(args) != 3 {
		return fmt.Errorf("text 需要 3 个参数（文本 x y），得到 %d 个", len(args))
	}
	text, err := r.text(args[0])
	if err != nil {
		return err
	}
	at, err := point(args[1], args[2])
	if err != nil {
		return err
	}
	p.FillText(text, at)
	return nil
}

func (r *runner) drawImage(cmd *dsl.Command, p paint.CanvasPainter) error {
	args := cmd.Positional()
	if len(args) != 3 {
		return fmt.Errorf("image 需要 3 个参数（路径 x y），得到 %d 个", len(args))
	}
	path, err := r.text(args[0])
	if err != nil {
		return err
	}
	at, err := point(args[1], args[2])
	if err != nil {
		return err
	}
	var source []paint.Rect
	if v := cmd.Option("source"); v != nil {
		if v.List == nil || len(v.List.Numbers) != 4 {
			return fmt.Errorf("source 需要 [x y w h]")
		}
		source = append(source, paint.Rect(v.List.Numbers))
	}
	p.DrawImage(r.images.Load(path), at, source...)
	return nil
}

func (r *runner) text(v *dsl.Value) (string, error) {
	s, ok := v.Text()
	if !ok {
		return "", fmt.Errorf("需要文本，得到 %s", v.Kind())
	}
	if v.String == nil {
		return s, nil
	}
	return binding.Expand(s, r.opts.Data)
}

func (r *runner) positionalText(cmd *dsl.Command, i int) (string, error) {
	args := cmd.Positional()
	if len(args) <= i {
		return "", fmt.Errorf("缺少第 %d 个参数", i+1)
	}
	return r.text(args[i])
}

func (r *runner) optionText(cmd *dsl.Command, key string) (string, error) {
	v := cmd.Option(key)
	if v == nil {
		return "", nil
	}
	s, err := r.text(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func (r *runner) style(v *dsl.Value) (paint.Style, error) {
	s, err := r.text(v)
	if err != nil {
		return paint.Style{}, err
	}
	return paint.Named(s), nil
}

func (r *runner) positionalStyle(cmd *dsl.Command) (paint.Style, error) {
	args := cmd.Positional()
	if len(args) != 1 {
		return paint.Style{}, fmt.Errorf("需要 1 个样式参数，得到 %d 个", len(args))
	}
	return r.style(args[0])
}

var errNotNumber = errors.New("需要数字")

func numbers(cmd *dsl.Command, n int) ([]float64, error) {
	args := cmd.Positional()
	if len(args) != n {
		return nil, fmt.Errorf("需要 %d 个数字参数，得到 %d 个", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		px, ok := a.Pixels()
		if !ok {
			return nil, fmt.Errorf("第 %d 个参数%w，得到 %s", i+1, errNotNumber, a.Kind())
		}
		out[i] = px
	}
	return out, nil
}

func rectangle(cmd *dsl.Command) (paint.Rect, error) {
	n, err := numbers(cmd, 4)
	if err != nil {
		return paint.Rect{}, err
	}
	return paint.Rect(n), nil
}

func point(x, y *dsl.Value) (paint.Point, error) {
	px, okX := x.Pixels()
	py, okY := y.Pixels()
	if !okX || !okY {
		return paint.Point{}, fmt.Errorf("坐标%w", errNotNumber)
	}
	return paint.Point{px, py}, nil
}
