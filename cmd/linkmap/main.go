package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/dispatch"
	"github.com/wudi/pagelink/extractor"
	"github.com/wudi/pagelink/layout"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
	"github.com/wudi/pagelink/page"
	"github.com/wudi/pagelink/render"
)

type options struct {
	input       string
	base        string
	pageSize    page.Size
	pageIndex   int
	hit         *coords.Point
	fit         layout.FitMode
	zoom        float64
	rotate      int
	canvasW     float64
	canvasH     float64
	spread      bool
	singleFirst bool
	reverse     bool
	sizePolicy  page.SpreadSizePolicy
	trace       bool
	policy      string
	overlay     string
	image       string
	verbose     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkmap: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "linkmap: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: linkmap [flags] <file.html|file.md|manifest.json>\n")
		flag.PrintDefaults()
	}
	base := flag.String("base", "", "Base URL for relative links")
	size := flag.String("size", "612x792", "Page size for HTML and Markdown input")
	pageIndex := flag.Int("page", 0, "Page (or spread) index to inspect")
	hit := flag.String("hit", "", "Canvas point x,y to hit-test and dispatch")
	fit := flag.String("fit", "page", "Fit mode: page, width or height")
	zoom := flag.Float64("zoom", layout.DefaultZoom, "Zoom factor, clamped to [1,5]")
	rotate := flag.Int("rotate", 0, "Clockwise quarter turns")
	canvas := flag.String("canvas", "800x1200", "Canvas size WxH in pixels")
	spread := flag.Bool("spread", false, "Pair pages into two-page spreads")
	singleFirst := flag.Bool("single-first", false, "Show the first page alone in spread mode")
	reverse := flag.Bool("reverse", false, "Right-to-left spreads")
	sizePolicy := flag.String("size-policy", "larger", "Spread size policy: larger or smaller")
	trace := flag.Bool("trace", false, "Log a debug line per extraction and dispatch span")
	policy := flag.String("policy", "", "JavaScript file defining allow(link)")
	overlay := flag.String("overlay", "", "Write a PNG with link outlines to this path")
	img := flag.String("image", "", "Page image to draw under the overlay")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing input file")
	}
	opts.input = flag.Arg(0)
	opts.base = *base
	opts.pageIndex = *pageIndex
	opts.zoom = *zoom
	opts.rotate = *rotate
	opts.spread = *spread
	opts.singleFirst = *singleFirst
	opts.reverse = *reverse
	opts.policy = *policy
	opts.overlay = *overlay
	opts.image = *img
	opts.verbose = *verbose
	opts.trace = *trace

	var err error
	if opts.fit, err = layout.ParseFitMode(*fit); err != nil {
		return options{}, err
	}
	if opts.sizePolicy, err = page.ParseSpreadSizePolicy(*sizePolicy); err != nil {
		return options{}, err
	}
	w, h, err := parsePair(*size, "x")
	if err != nil {
		return options{}, fmt.Errorf("-size: %w", err)
	}
	opts.pageSize = page.Size{Width: w, Height: h}
	if opts.canvasW, opts.canvasH, err = parsePair(*canvas, "x"); err != nil {
		return options{}, fmt.Errorf("-canvas: %w", err)
	}
	if *hit != "" {
		x, y, err := parsePair(*hit, ",")
		if err != nil {
			return options{}, fmt.Errorf("-hit: %w", err)
		}
		opts.hit = &coords.Point{X: x, Y: y}
	}
	return opts, nil
}

func parsePair(s, sep string) (float64, float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two numbers separated by %q, got %q", sep, s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.verbose || opts.trace {
		level = slog.LevelDebug
	}
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	tracer := observability.NopTracer()
	if opts.trace {
		tracer = observability.NewLogTracer(logger)
	}

	pages, err := loadPages(ctx, opts, logger, tracer)
	if err != nil {
		return err
	}
	var provider page.Provider = page.SliceProvider(pages)
	if opts.spread {
		provider = &page.SpreadProvider{
			Source:         provider,
			SingleFirst:    opts.singleFirst,
			Reverse:        opts.reverse,
			UsePlaceholder: true,
			SizePolicy:     opts.sizePolicy,
		}
	}

	if opts.hit == nil && opts.overlay == "" {
		if opts.spread {
			pages, err = loadAll(ctx, provider)
			if err != nil {
				return err
			}
		}
		return extractor.WriteManifest(os.Stdout, pages)
	}

	p, err := provider.Page(ctx, opts.pageIndex)
	if err != nil {
		return fmt.Errorf("load page %d: %w", opts.pageIndex, err)
	}
	engine := layout.NewEngine(
		layout.WithFitMode(opts.fit),
		layout.WithCanvas(opts.canvasW, opts.canvasH),
		layout.WithZoom(opts.zoom),
		layout.WithRotation(opts.rotate),
		layout.WithLogger(logger),
	)
	view := engine.Layout(p)

	if opts.overlay != "" {
		if err := writeOverlay(opts, view); err != nil {
			return err
		}
	}
	if opts.hit != nil {
		return tap(ctx, opts, logger, tracer, view)
	}
	return nil
}

func loadPages(ctx context.Context, opts options, logger observability.Logger, tracer observability.Tracer) ([]*page.Page, error) {
	extOpts := []extractor.Option{extractor.WithLogger(logger), extractor.WithTracer(tracer)}
	if opts.base != "" {
		base, err := url.Parse(opts.base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		extOpts = append(extOpts, extractor.WithBase(base))
	}
	ext := extractor.New(extOpts...)

	file, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	var links []*link.Link
	switch strings.ToLower(filepath.Ext(opts.input)) {
	case ".json":
		return extractor.ReadManifest(file)
	case ".html", ".htm":
		links, err = ext.ExtractImageMap(ctx, file)
	case ".md", ".markdown":
		src, rerr := io.ReadAll(file)
		if rerr != nil {
			return nil, fmt.Errorf("read markdown: %w", rerr)
		}
		links, err = ext.ExtractMarkdown(ctx, src)
	default:
		return nil, fmt.Errorf("unsupported input %q", filepath.Ext(opts.input))
	}
	if err != nil {
		return nil, err
	}
	return []*page.Page{page.New(0, opts.pageSize, links...)}, nil
}

func loadAll(ctx context.Context, p page.Provider) ([]*page.Page, error) {
	out := make([]*page.Page, 0, p.Count())
	for i := 0; i < p.Count(); i++ {
		pg, err := p.Page(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("load page %d: %w", i, err)
		}
		out = append(out, pg)
	}
	return out, nil
}

func tap(ctx context.Context, opts options, logger observability.Logger, tracer observability.Tracer, view *layout.View) error {
	dopts := []dispatch.Option{dispatch.WithLogger(logger), dispatch.WithTracer(tracer)}
	if opts.policy != "" {
		script, err := os.ReadFile(opts.policy)
		if err != nil {
			return fmt.Errorf("read policy: %w", err)
		}
		policy, err := dispatch.NewScriptPolicy(string(script))
		if err != nil {
			return err
		}
		dopts = append(dopts, dispatch.WithPolicy(policy))
	}
	d := dispatch.New(dopts...)
	for _, a := range link.Actions() {
		d.Handle(a, dispatch.HandlerFunc(printLink))
	}
	_, err := d.Tap(ctx, view, *opts.hit)
	return err
}

func printLink(_ context.Context, l *link.Link) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal link: %w", err)
	}
	fmt.Printf("%s\n", data)
	return nil
}

func writeOverlay(opts options, view *layout.View) error {
	dst := image.NewNRGBA(image.Rect(0, 0, int(opts.canvasW), int(opts.canvasH)))
	identity := coords.Identity()
	if opts.image != "" {
		f, err := os.Open(opts.image)
		if err != nil {
			return fmt.Errorf("open page image: %w", err)
		}
		src, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode page image: %w", err)
		}
		// Draw the page where the layout placed it, then the canvas-space links.
		pr := view.Transform.TransformRect(view.Source.Size.Rect())
		target := image.Rect(int(pr.Left), int(pr.Top), int(pr.Right), int(pr.Bottom))
		if sub, ok := dst.SubImage(target).(*image.NRGBA); ok {
			render.Overlay(sub, src, nil, render.Options{})
		}
	}
	render.Overlay(dst, nil, view.Links.Links(), render.Options{Transform: &identity})

	out, err := os.Create(opts.overlay)
	if err != nil {
		return fmt.Errorf("create overlay: %w", err)
	}
	if err := png.Encode(out, dst); err != nil {
		out.Close()
		return fmt.Errorf("encode overlay: %w", err)
	}
	return out.Close()
}
