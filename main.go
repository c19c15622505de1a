package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ByLCY/canvasbuilder/config"
	"github.com/ByLCY/canvasbuilder/dsl"
	"github.com/ByLCY/canvasbuilder/paint"
	"github.com/ByLCY/canvasbuilder/paint/mock"
	canvasrenderer "github.com/ByLCY/canvasbuilder/renderer/canvas"
	ggrenderer "github.com/ByLCY/canvasbuilder/renderer/gg"
	"github.com/ByLCY/canvasbuilder/script"
)

// runOptions 汇总命令行参数。
type runOptions struct {
	configPath string
	engine     string
	dataJSON   string
	eventsPath string
	outDir     string
	debug      bool
	dryRun     bool
}

var opts runOptions

var rootCmd = &cobra.Command{
	Use:   "canvasbuilder",
	Short: "Replay paint scripts on an HTML-canvas-like surface",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Usage()
	},
}

var runCmd = &cobra.Command{
	Use:   "run SCRIPT",
	Short: "Run a paint script and write its exports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return run(ctx, args[0], opts, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().StringVar(&opts.configPath, "config", "", "TOML 配置文件路径")
	runCmd.Flags().StringVar(&opts.engine, "engine", "", "绘制引擎: canvas 或 gg（覆盖配置）")
	runCmd.Flags().StringVar(&opts.dataJSON, "data", "", "绑定到脚本的 JSON 数据")
	runCmd.Flags().StringVar(&opts.eventsPath, "events", "", "事件日志 JSON 输出路径")
	runCmd.Flags().StringVar(&opts.outDir, "out", "", "导出文件目录（覆盖配置）")
	runCmd.Flags().BoolVar(&opts.debug, "debug", false, "输出调试日志")
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "仅记录事件，不实际绘制")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("执行失败: %v", err)
	}
}

// run 串联配置、解析与绘制。
func run(ctx context.Context, scriptPath string, o runOptions, out io.Writer) error {
	conf := config.Default()
	if o.configPath != "" {
		// 配置中的字体路径相对配置文件所在目录。
		confPath, err := filepath.Abs(o.configPath)
		if err != nil {
			return fmt.Errorf("解析配置路径失败: %w", err)
		}
		c, err := config.NewConfigWithFile(confPath)
		if err != nil {
			return err
		}
		conf = c
	}
	if o.engine != "" {
		conf.Engine = o.engine
	}
	if o.outDir != "" {
		conf.OutDir = o.outDir
	}
	if o.debug {
		conf.Debug = true
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	if conf.Debug {
		paint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer paint.SetLogger(nil)
	}

	var data any
	if o.dataJSON != "" {
		if err := json.Unmarshal([]byte(o.dataJSON), &data); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	file, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("无法打开脚本 %s: %w", scriptPath, err)
	}
	defer file.Close()
	doc, err := dsl.ParseFile(scriptPath, file)
	if err != nil {
		return fmt.Errorf("解析脚本失败: %w", err)
	}

	baseDir := filepath.Dir(scriptPath)
	imageDir := baseDir
	if conf.ImageDir != "" {
		imageDir = conf.ImageDir
		if !filepath.IsAbs(imageDir) {
			imageDir = filepath.Join(baseDir, imageDir)
		}
	}
	if conf.OutDir != "" {
		if err := os.MkdirAll(conf.OutDir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	builder, err := newBuilder(conf, baseDir, o.dryRun)
	if err != nil {
		return err
	}
	if conf.Width > 0 {
		builder.SetSize(conf.Width, conf.Height)
	}
	for _, f := range conf.Fonts {
		builder.RegisterFont(f.Path, paint.Font{Family: f.Family, Style: f.Style, Weight: f.Weight})
	}

	res, runErr := script.Run(ctx, doc, builder, script.Options{
		Data:    data,
		BaseDir: imageDir,
		OutDir:  conf.OutDir,
	})
	if res != nil && res.Painter != nil {
		if err := res.Painter.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	if o.eventsPath != "" {
		if err := writeEvents(builder.Events(), o.eventsPath); err != nil {
			return err
		}
	} else if o.dryRun {
		if err := paint.WriteEvents(out, builder.Events()); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if !o.dryRun {
		reportExports(out, res.Exports)
	}
	return nil
}

func newBuilder(conf *config.Config, baseDir string, dryRun bool) (paint.CanvasBuilder, error) {
	if dryRun {
		return mock.NewBuilder(), nil
	}
	var engine paint.Engine
	switch conf.Engine {
	case "canvas":
		engine = canvasrenderer.NewEngine(baseDir)
	case "gg":
		engine = ggrenderer.NewEngine(baseDir)
	default:
		return nil, fmt.Errorf("未知引擎 %q", conf.Engine)
	}
	return paint.NewBuilder(engine, paint.WithDebug(conf.Debug)), nil
}

func writeEvents(events []paint.Event, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建事件目录失败: %w", err)
		}
	}
	if err := paint.WriteEventsJSON(events, path); err != nil {
		return fmt.Errorf("输出事件 JSON 失败: %w", err)
	}
	return nil
}

func reportExports(out io.Writer, exports []string) {
	for _, path := range exports {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(out, "已导出：%s\n", path)
			continue
		}
		fmt.Fprintf(out, "已导出：%s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	}
}
