// Command ptcbp builds and inspects the PTCBP raster command stream for
// Brother P-touch-family thermal tape printers: "print" turns a PNG plus
// print options into a byte-exact command stream, "status" and
// "initialise" emit the device's other two standalone commands, and
// "parse"/"read-status" decode a captured stream or status reply back
// into human-readable form.
//
// Dispatch on os.Args[1] and the mainCLI() error indirection mirror
// ka2n-ptouchgo's cmd/ptouchgo/main.go; the subcommand/flag layout
// mirrors make_request.cpp's own argv[1] switch.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"ptcbp"
	"ptcbp/parser"
	"ptcbp/raster"
	"ptcbp/rescale"
	"ptcbp/tapespec"
)

func main() {
	log.SetPrefix("ptcbp: ")
	log.SetFlags(0)

	if err := mainCLI(os.Args[1:]); err != nil {
		log.Fatalln(err)
	}
}

func mainCLI(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: ptcbp <print|status|initialise|parse|read-status> [options]")
	}

	switch args[0] {
	case "print":
		return runPrint(args[1:])
	case "status":
		return runStatus(args[1:])
	case "initialise":
		return runInitialise(args[1:])
	case "parse":
		return runParse(args[1:])
	case "read-status":
		return runReadStatus(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

// stringList accumulates repeated -i flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

func runInitialise(args []string) error {
	fs := newFlagSet("initialise")
	out := fs.String("o", "", "output path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return &ptcbp.ConfigurationError{Option: "-o", Reason: "required"}
	}

	f, err := openAppend(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	return ptcbp.NewCommandWriter(f).Initialize()
}

func runStatus(args []string) error {
	fs := newFlagSet("status")
	out := fs.String("o", "", "output path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return &ptcbp.ConfigurationError{Option: "-o", Reason: "required"}
	}

	f, err := openAppend(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	return ptcbp.NewCommandWriter(f).StatusRequest()
}

func runReadStatus(args []string) error {
	fs := newFlagSet("read-status")
	in := fs.String("i", "", "input path (required; reads exactly 32 bytes)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return &ptcbp.ConfigurationError{Option: "-i", Reason: "required"}
	}

	f, err := os.Open(*in)
	if err != nil {
		return errors.Wrap(err, *in)
	}
	defer f.Close()

	buf := make([]byte, ptcbp.StatusFrameSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return errors.Wrap(err, "read status frame")
	}

	s, err := ptcbp.DecodeStatus(buf)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n", s.ModelCode)
	fmt.Printf("battery: %s\n", s.Battery)
	fmt.Printf("extended error: %s\n", s.ExtendedErr)
	if s.Errors.Any() {
		fmt.Printf("errors: %s\n", strings.Join(s.Errors.Strings(), ", "))
	} else {
		fmt.Println("errors: none")
	}
	fmt.Printf("media width: %s\n", s.MediaWidthString())
	fmt.Printf("media type: %s\n", s.MediaTypeString())
	fmt.Printf("status: %s\n", s.StatusType)
	fmt.Printf("phase: %s\n", s.PhaseString())
	fmt.Printf("notification: %s\n", s.Notification)
	fmt.Printf("tape colour: %s\n", s.TapeColour)
	fmt.Printf("text colour: %s\n", s.TextColour)
	for _, diag := range s.Validate() {
		fmt.Printf("diagnostic: %s\n", diag)
	}
	return nil
}

func runParse(args []string) error {
	fs := newFlagSet("parse")
	in := fs.String("i", "", "input path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return &ptcbp.ConfigurationError{Option: "-i", Reason: "required"}
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return errors.Wrap(err, *in)
	}

	frames, errs := parser.Parse(data)
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, f := range frames {
		fmt.Fprintf(w, "%08x  %s\n", f.Offset(), f)
	}
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", e)
	}
	return nil
}

func runPrint(args []string) error {
	fs := newFlagSet("print")
	var images stringList
	fs.Var(&images, "i", "source PNG path (repeatable), or the literal \"test\" for the diagnostic pattern")
	out := fs.String("o", "", "output path")
	copies := fs.Int("copies", 0, "copies per image")
	compression := fs.String("compression", "", `"no compression" or "tiff"`)
	tapeType := fs.String("tape-type", "", "media type, e.g. \"laminated tape\"")
	tapeWidth := fs.String("tape-width", "", "tape id, e.g. \"12 mm\"")
	setLengthMargin := fs.Uint("set-length-margin", 0, "margin amount, in dots")
	noAutoCut := fs.Bool("no-auto-cut", false, "disable auto-cut")
	noHalfCut := fs.Bool("no-half-cut", false, "disable half-cut")
	chainPrinting := fs.Bool("chain-printing", false, "enable chain printing")
	mirrorPrinting := fs.Bool("mirror-printing", false, "mirror the printed image")
	scaleDown := fs.Bool("scale-down", false, "Lanczos-downscale a source image taller than the tape's usable height")
	scaleUp := fs.Bool("scale-up", false, "nearest-neighbor 2x-enlarge a source image shorter than the tape's usable height")
	center := fs.Bool("center", false, "center a non-exact-fit image within the usable pin range")
	debug := fs.Bool("debug", false, "print each source row's dither intensities in binary")
	verbose := fs.Bool("verbose", false, "log each copy as it is written")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(images) == 0 {
		return &ptcbp.ConfigurationError{Option: "-i", Reason: "required"}
	}
	if *out == "" {
		return &ptcbp.ConfigurationError{Option: "-o", Reason: "required"}
	}
	if *copies <= 0 {
		return &ptcbp.ConfigurationError{Option: "--copies", Reason: "must be positive"}
	}

	comp, err := ptcbp.ParseCompression(*compression)
	if err != nil {
		return err
	}
	mediaType, err := ptcbp.ParseMediaType(*tapeType)
	if err != nil {
		return err
	}

	job := ptcbp.NewJob()
	job.Debug = *verbose
	var scaledAny bool

	for _, path := range images {
		var src raster.Source
		var geom tapespec.Geometry

		if path == "test" {
			geom, err = tapespec.Capacity(*tapeWidth)
			if err != nil {
				return err
			}
			src = raster.TestPatternSource{Rows: geom.UsableHeight}
		} else {
			img, err := loadImage(path)
			if err != nil {
				return errors.Wrap(err, "load image")
			}

			full, err := tapespec.Capacity(*tapeWidth)
			if err != nil {
				return err
			}

			scaled := img
			srcH := img.Bounds().Dy()
			switch {
			case *scaleDown && srcH > full.UsableHeight:
				scaled = rescale.Lanczos(img, img.Bounds().Dx(), full.UsableHeight, rescale.DefaultA)
				scaledAny = true
			case *scaleUp && srcH*2 <= full.UsableHeight:
				scaled = rescale.ScaleUp(img, full.UsableHeight)
				scaledAny = true
			}

			geom, err = tapespec.Resolve(*tapeWidth, *center, scaled.Bounds().Dy())
			if err != nil {
				return err
			}
			src = raster.ImageSource{Img: scaled}

			if *debug {
				dumpPinDebug(src)
			}

			if scaledAny {
				if err := writePreview(job.ID.String(), scaled, *mirrorPrinting); err != nil {
					log.Printf("preview: %v", err)
				}
			}
		}

		job.Images = append(job.Images, ptcbp.ImageJob{
			Geometry:  geom,
			Source:    src,
			Copies:    *copies,
			MediaType: mediaType,
			VariousFlags: ptcbp.VariousModeFlags{
				AutoCut:        !*noAutoCut,
				MirrorPrinting: *mirrorPrinting,
			},
			AdvancedFlags: ptcbp.AdvancedModeFlags{
				HalfCut:         !*noHalfCut,
				NoChainPrinting: !*chainPrinting,
			},
			MarginAmount: uint16(*setLengthMargin),
			Compress:     comp == ptcbp.CompressionTIFF,
		})
	}

	f, err := openAppend(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	return job.Run(f)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// writePreview saves the (possibly rescaled) image sent to the device as
// a PNG, namespaced by the job's correlation ID so concurrent manual
// invocations sharing /tmp don't clobber each other's preview. Mirror
// printing flips the preview horizontally to match what the tape reads
// once it exits the head.
func writePreview(jobID string, img image.Image, mirror bool) error {
	out := img
	if mirror {
		out = imaging.FlipH(img)
	}
	return imaging.Save(out, fmt.Sprintf("/tmp/preview-%s.png", jobID))
}

// dumpPinDebug prints each source row's dither intensity as an 8-bit
// binary string, the way cmd/ptouchgo/main.go dumped its raw raster
// buffer before compression.
func dumpPinDebug(src raster.Source) {
	for y := 0; y < src.Height(); y++ {
		var sb strings.Builder
		for x := 0; x < src.Width(); x++ {
			fmt.Fprintf(&sb, "%08b", src.IntensityAt(x, y))
		}
		fmt.Println(sb.String())
	}
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
