package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"

	"example.com/ffpkggate/internal/common"
	"example.com/ffpkggate/internal/ffpkg"
	"example.com/ffpkggate/internal/manifest"
	"example.com/ffpkggate/internal/report"
	"example.com/ffpkggate/internal/source"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "create":
		createCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	case "extract":
		extractCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`ffpkgctl %s (built %s) <command> [options]

Commands:
  create   --title <9-char id> --dir <aux dir> --in <image> --out <container.ffpkg> [--metrics] [--progress]
  inspect  --in <container.ffpkg>
  extract  --in <container.ffpkg> --out-dir <dir> [--image <file>]
  report   --in <container.ffpkg> [--pdf <file>] [--json <file>]
  manifest --inputs <comma-separated> --out <manifest.json>
`, version, buildDate)
}

func createCmd(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "9-character title identifier")
	dir := fs.String("dir", "sce_sys", "directory of auxiliary files")
	in := fs.String("in", "", "input image file")
	out := fs.String("out", "", "output container path (defaults to <image>.ffpkg)")
	metricsFlag := fs.Bool("metrics", false, "print packaging throughput metrics")
	progressFlag := fs.Bool("progress", false, "display packaging progress updates")
	fs.Parse(args)

	if *title == "" || *in == "" {
		fmt.Println("required: --title, --in")
		os.Exit(1)
	}
	if err := ffpkg.CheckTitleID(*title); err != nil {
		fmt.Println("title id:", err)
		os.Exit(1)
	}
	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".ffpkg"
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
	}

	entries, err := source.List(afero.NewOsFs(), *dir)
	if err != nil {
		fmt.Println("list aux files:", err)
		os.Exit(1)
	}
	if metrics != nil {
		var total int64
		for _, e := range entries {
			total += int64(len(e.Data))
		}
		metrics.SetTotalBytes(total)
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}
	for _, e := range entries {
		fmt.Printf("  + %s (%d bytes)\n", e.Path, len(e.Data))
		if metrics != nil {
			metrics.AddFile(int64(len(e.Data)))
		}
	}
	err = ffpkg.Create(*in, outPath, *title, entries)
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	if err != nil {
		fmt.Println("create:", err)
		os.Exit(1)
	}
	fmt.Printf("\nDone — %s written\n", outPath)
	if metrics != nil && *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Printf("Metrics: duration=%s files=%d packed=%s\n",
			snap.Duration.Round(10*time.Millisecond),
			snap.Files,
			common.FormatBytes(snap.Bytes),
		)
	}
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "", "container file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	tr, err := ffpkg.Open(*in)
	if err != nil {
		fmt.Println("open container:", err)
		os.Exit(1)
	}
	fmt.Printf("Title ID: %s\n", tr.TitleID)
	fmt.Printf("Version:  %d\n", tr.Version)
	fmt.Printf("Image:    %s\n", common.FormatBytes(tr.ImageSize))
	fmt.Printf("Trailer:  %s (%d files)\n", common.FormatBytes(tr.Size), len(tr.Entries))
	if len(tr.Entries) == 0 {
		return
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tSIZE")
	for _, e := range tr.Entries {
		fmt.Fprintf(w, "%s\t%d\n", e.Path, len(e.Data))
	}
	w.Flush()
}

func extractCmd(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	in := fs.String("in", "", "container file")
	outDir := fs.String("out-dir", "", "directory to extract auxiliary files into")
	imageOut := fs.String("image", "", "also write the bare image to this path")
	fs.Parse(args)

	if *in == "" || *outDir == "" {
		fmt.Println("required: --in, --out-dir")
		os.Exit(1)
	}
	tr, err := ffpkg.Open(*in)
	if err != nil {
		fmt.Println("open container:", err)
		os.Exit(1)
	}
	for _, e := range tr.Entries {
		dest := filepath.Join(*outDir, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			fmt.Println("extract:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(dest, e.Data, 0o644); err != nil {
			fmt.Println("extract:", err)
			os.Exit(1)
		}
		fmt.Printf("  > %s (%d bytes)\n", e.Path, len(e.Data))
	}
	if *imageOut != "" {
		if err := writeImage(*in, *imageOut, tr.ImageSize); err != nil {
			fmt.Println("write image:", err)
			os.Exit(1)
		}
		fmt.Printf("  > %s (image, %d bytes)\n", *imageOut, tr.ImageSize)
	}
	fmt.Printf("\nExtracted %d file(s) to %s\n", len(tr.Entries), *outDir)
}

// writeImage copies the first size bytes of the container, i.e. everything
// before the trailer.
func writeImage(containerPath, dest string, size int64) error {
	f, err := os.Open(containerPath)
	if err != nil {
		return err
	}
	defer f.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.NewSectionReader(f, 0, size)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "container file")
	pdfPath := fs.String("pdf", "", "output contents report PDF")
	jsonPath := fs.String("json", "", "output contents report JSON")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	if *pdfPath == "" && *jsonPath == "" {
		fmt.Println("required: --pdf or --json")
		os.Exit(1)
	}
	info, err := report.Inspect(*in)
	if err != nil {
		fmt.Println("inspect container:", err)
		os.Exit(1)
	}
	if *jsonPath != "" {
		if err := report.SaveContentsJSON(info, *jsonPath); err != nil {
			fmt.Println("write json:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote JSON:", *jsonPath)
	}
	if *pdfPath != "" {
		if err := report.SaveContentsPDF(info, *pdfPath); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote PDF:", *pdfPath)
	}
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}
	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}
	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	if err := manifest.Save(m, *out); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)
}
