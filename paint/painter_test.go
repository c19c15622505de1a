package paint

import (
	"context"
	"errors"
	"image"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPainter(t *testing.T, width, height int) (*recordingEngine, *Builder, CanvasPainter) {
	t.Helper()
	engine := &recordingEngine{}
	b := NewBuilder(engine)
	b.SetSize(width, height)
	p, err := b.BeginPainting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return engine, b, p
}

func waitFuture[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "future never settled")
	return v, err
}

// pendingImage 返回一个在 delay 之后才解析的图片句柄。
func pendingImage(src string, delay time.Duration) *ImageHandle {
	h := newImageHandle(src)
	go func() {
		time.Sleep(delay)
		h.settle(&Image{Src: src, Image: image.NewRGBA(image.Rect(0, 0, 10, 10))}, nil)
	}()
	return h
}

func styleRef(s Style) *Style { return &s }

func TestClearExportScenario(t *testing.T) {
	engine, _, p := newTestPainter(t, 400, 300)

	_, err := waitFuture(t, p.Clear(Named("white")).Export("out.png"))
	require.NoError(t, err)

	assert.Equal(t, []Event{
		SetSizeEvent{Width: 400, Height: 300},
		FillRectangleEvent{Rect: Rect{0, 0, 400, 300}, Style: styleRef(Named("white"))},
		ExportEvent{To: "out.png"},
	}, p.Events())
	assert.Equal(t, []string{"fill 0 0 400 300 white", "write out.png"}, engine.Ops())
}

func TestDrawImageLoggedBeforeLaterCalls(t *testing.T) {
	_, _, p := newTestPainter(t, 100, 100)

	img := pendingImage("slow.png", 50*time.Millisecond)
	p.DrawImage(img, Point{25, 25}).SetFillStyle(Named("red"))
	_, err := waitFuture(t, p.Export("out.png"))
	require.NoError(t, err)

	events := p.Events()
	require.Len(t, events, 4)
	assert.Equal(t, DrawImageEvent{Image: "slow.png", At: Point{25, 25}}, events[1])
	assert.Equal(t, SetFillStyleEvent{Style: Named("red")}, events[2])
}

func TestOrderFollowsIssueNotResolution(t *testing.T) {
	_, _, p := newTestPainter(t, 100, 100)

	// 越早发出的图片越晚解析。
	srcs := []string{"a.png", "b.png", "c.png", "d.png"}
	for i, src := range srcs {
		delay := time.Duration(len(srcs)-i) * 20 * time.Millisecond
		p.DrawImage(pendingImage(src, delay), Point{float64(i), 0})
		p.FillText(src, Point{0, float64(i)})
	}
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	var got []string
	for _, e := range p.Events() {
		switch e := e.(type) {
		case DrawImageEvent:
			got = append(got, "image:"+e.Image)
		case FillTextEvent:
			got = append(got, "text:"+e.Text)
		}
	}
	assert.Equal(t, []string{
		"image:a.png", "text:a.png",
		"image:b.png", "text:b.png",
		"image:c.png", "text:c.png",
		"image:d.png", "text:d.png",
	}, got)
}

func TestArgumentsAreSnapshotted(t *testing.T) {
	_, _, p := newTestPainter(t, 100, 100)

	img := pendingImage("slow.png", 30*time.Millisecond)
	rect := Rect{1, 2, 3, 4}
	at := Point{5, 6}
	width := 3.0
	stroke := Stroke{Width: &width}
	p.DrawImage(img, Point{})
	p.FillRectangle(rect)
	p.FillText("hi", at)
	p.StrokeRectangle(rect, stroke)
	rect[0], at[0], width = 99, 99, 99

	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	events := p.Events()
	require.Len(t, events, 5)
	assert.Equal(t, Rect{1, 2, 3, 4}, events[2].(FillRectangleEvent).Rect)
	assert.Equal(t, Point{5, 6}, events[3].(FillTextEvent).At)
	s := events[4].(StrokeRectangleEvent)
	assert.Equal(t, Rect{1, 2, 3, 4}, s.Rect)
	require.NotNil(t, s.Stroke.Width)
	assert.Equal(t, 3.0, *s.Stroke.Width)
}

func TestOmittedStyleDiffersFromExplicit(t *testing.T) {
	_, _, p := newTestPainter(t, 100, 100)

	r := Rect{0, 0, 10, 10}
	p.SetFillStyle(Named("black")).FillRectangle(r).FillRectangle(r, Named("black"))
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	events := p.Events()
	require.Len(t, events, 4)
	assert.Equal(t, FillRectangleEvent{Rect: r}, events[2])
	assert.Equal(t, FillRectangleEvent{Rect: r, Style: styleRef(Named("black"))}, events[3])
	assert.NotEqual(t, events[2], events[3])
}

func TestTemporaryOverridesAreRestored(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	p.SetFillStyle(Named("blue")).
		FillRectangle(Rect{0, 0, 1, 1}, Named("red")).
		FillRectangle(Rect{0, 0, 2, 2}).
		SetStrokeStyle(Named("green")).
		SetLineWidth(2).
		StrokeRectangle(Rect{0, 0, 3, 3}, Stroke{}.WithWidth(5)).
		StrokeRectangle(Rect{0, 0, 4, 4}, Stroke{}.WithStyle(Named("navy"))).
		StrokeRectangle(Rect{0, 0, 5, 5})
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"fill 0 0 1 1 red",
		"fill 0 0 2 2 blue",
		"stroke 0 0 3 3 green 5",
		"stroke 0 0 4 4 navy 2",
		"stroke 0 0 5 5 green 2",
	}, engine.Ops())
}

func TestExportDrainsOnlyItsOwnChain(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	img := pendingImage("slow.png", 40*time.Millisecond)
	p.DrawImage(img, Point{})
	first := p.Export("first.png")
	p.FillRectangle(Rect{0, 0, 1, 1})
	second := p.Export("second.png")

	_, err := waitFuture(t, first)
	require.NoError(t, err)
	_, err = waitFuture(t, second)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"image (0,0)-(10,10) 0 0",
		"write first.png",
		"fill 0 0 1 1 black",
		"write second.png",
	}, engine.Ops())
}

func TestFontChangesApplyBeforeText(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	p.FillText("a", Point{0, 10}).
		SetFontFamily("Serif").
		SetFontSize(24).
		FillText("b", Point{0, 40})
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	assert.Equal(t, []string{
		`text "a" 0 10 10px "sans-serif" black`,
		`text "b" 0 40 24px "Serif" black`,
	}, engine.Ops())
}

func TestFailedImageRejectsExportAndSkipsRest(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	cause := errors.New("boom")
	p.FillRectangle(Rect{0, 0, 1, 1}).
		DrawImage(FailedImage("missing.png", cause), Point{}).
		FillRectangle(Rect{0, 0, 2, 2})
	_, err := waitFuture(t, p.Export("out.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolveImage)
	assert.ErrorIs(t, err, cause)

	// 失败前已执行的操作保留在日志中，失败之后的操作不再执行。
	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, FillRectangleEvent{Rect: Rect{0, 0, 1, 1}}, events[1])
	assert.Equal(t, []string{"fill 0 0 1 1 black"}, engine.Ops())

	// 下一轮导出不受上一轮失败影响。
	p.FillRectangle(Rect{0, 0, 3, 3})
	_, err = waitFuture(t, p.Export("retry.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fill 0 0 1 1 black", "fill 0 0 3 3 black", "write retry.png"}, engine.Ops())
}

func TestUnknownStyleFailsChain(t *testing.T) {
	_, _, p := newTestPainter(t, 100, 100)

	p.SetFillStyle(Named("bogus"))
	_, err := waitFuture(t, p.Export("out.png"))
	assert.ErrorIs(t, err, errBadStyle)
}

func TestEncodeFailure(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)
	engine.failSave = errors.New("disk full")

	_, err := waitFuture(t, p.Clear(Named("white")).Export("out.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncode)
	for _, e := range p.Events() {
		assert.NotEqual(t, KindExport, e.Kind())
	}
}

func TestDrawImageSourceRectIsClipped(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	img := ResolvedImage("tile.png", image.NewRGBA(image.Rect(0, 0, 10, 10)))
	p.DrawImage(img, Point{50, 50}, Rect{2, 3, 4, 4}).
		DrawImage(img, Point{50, 50}, Rect{-2, -2, 5, 5}).
		DrawImage(img, Point{50, 50}, Rect{20, 20, 5, 5})
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"image (2,3)-(6,7) 50 50",
		"image (0,0)-(3,3) 52 52",
	}, engine.Ops())
	events := p.Events()
	require.Len(t, events, 4)
	assert.Equal(t, DrawImageEvent{Image: "tile.png", At: Point{50, 50}, Source: &Rect{20, 20, 5, 5}}, events[3])
}

func TestBeginPaintingTwice(t *testing.T) {
	engine, b, _ := newTestPainter(t, 10, 10)

	p, err := b.BeginPainting()
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrAlreadyPainting)
	assert.Equal(t, 1, engine.created)
}

func TestRegisterFontFailureIsSticky(t *testing.T) {
	engine := &recordingEngine{failFont: errors.New("no such file")}
	b := NewBuilder(engine)
	b.RegisterFont("a.ttf", Font{Family: "A"})

	_, err := b.BeginPainting()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.failFont)
	assert.Empty(t, b.Events())
}

func TestBuilderUsesDefaultSize(t *testing.T) {
	engine := &recordingEngine{}
	p, err := NewBuilder(engine).
		RegisterFont("a.ttf", Font{Family: "A", Weight: "bold"}).
		Build()
	require.NoError(t, err)
	defer p.Close()

	_, err = waitFuture(t, p.Clear(Named("white")).Settle())
	require.NoError(t, err)
	assert.Equal(t, []string{"fill 0 0 800 600 white"}, engine.Ops())
	assert.Equal(t, RegisterFontEvent{Path: "a.ttf", Style: Font{Family: "A", Weight: "bold"}}, p.Events()[0])
}

func TestCloseDrainsAndRejectsLaterBarriers(t *testing.T) {
	engine, _, p := newTestPainter(t, 10, 10)

	p.DrawImage(pendingImage("slow.png", 20*time.Millisecond), Point{})
	require.NoError(t, p.Close())
	assert.Len(t, engine.Ops(), 1)
	require.NoError(t, p.Close())

	p.FillRectangle(Rect{0, 0, 1, 1})
	_, err := waitFuture(t, p.Export("late.png"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Len(t, engine.Ops(), 1)
}

func TestNegativeSourceSizeDrawsNothing(t *testing.T) {
	engine, _, p := newTestPainter(t, 100, 100)

	img := ResolvedImage("tile.png", image.NewRGBA(image.Rect(0, 0, 10, 10)))
	p.DrawImage(img, Point{5, 5}, Rect{8, 8, -4, 4}).
		DrawImage(img, Point{5, 5}, Rect{8, 8, 2, -1})
	_, err := waitFuture(t, p.Settle())
	require.NoError(t, err)

	assert.Empty(t, engine.Ops())
	assert.Equal(t, []Event{
		SetSizeEvent{Width: 100, Height: 100},
		DrawImageEvent{Image: "tile.png", At: Point{5, 5}, Source: &Rect{8, 8, -4, 4}},
		DrawImageEvent{Image: "tile.png", At: Point{5, 5}, Source: &Rect{8, 8, 2, -1}},
	}, p.Events())
}

func workerRunning(p CanvasPainter) bool {
	seq := p.(*Painter).seq
	seq.mu.Lock()
	defer seq.mu.Unlock()
	return seq.running
}

// 未调用 Close 的画笔在队列清空后不应残留 goroutine。
func TestDroppedPaintersReleaseWorkers(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		p, err := NewBuilder(&recordingEngine{}).BeginPainting()
		require.NoError(t, err)
		_, err = waitFuture(t, p.Clear(Named("white")).Export("x.png"))
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChainFailureSurvivesIdleWorker(t *testing.T) {
	engine, _, p := newTestPainter(t, 10, 10)

	p.SetFillStyle(Named("bogus"))
	require.Eventually(t, func() bool { return !workerRunning(p) }, 2*time.Second, 5*time.Millisecond)

	p.FillRectangle(Rect{0, 0, 1, 1})
	_, err := waitFuture(t, p.Export("a.png"))
	assert.ErrorIs(t, err, errBadStyle)

	_, err = waitFuture(t, p.FillRectangle(Rect{0, 0, 2, 2}).Export("b.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fill 0 0 2 2 black", "write b.png"}, engine.Ops())
}
