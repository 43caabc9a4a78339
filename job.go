package ptcbp

import (
	"io"
	"log"

	"github.com/google/uuid"

	"ptcbp/raster"
	"ptcbp/tapespec"
)

// ImageJob is one (image, options) entry in a Job: the resolved tape
// geometry and print settings for one source image, printed Copies times
// in a row before the next image (if any) begins.
type ImageJob struct {
	Geometry      tapespec.Geometry
	Source        raster.Source
	Copies        int
	MediaType     byte
	VariousFlags  VariousModeFlags
	AdvancedFlags AdvancedModeFlags
	MarginAmount  uint16
	Compress      bool
}

// Job orchestrates a multi-copy, multi-image print: an ordered list of
// ImageJob entries written to a single byte sink as one continuous
// command stream. Its ID is a per-invocation correlation value (not part
// of the wire protocol) used to namespace preview-image output so
// concurrent manual invocations sharing /tmp don't clobber each other.
type Job struct {
	ID     uuid.UUID
	Images []ImageJob
	Debug  bool
}

// NewJob builds an empty Job with a fresh correlation ID.
func NewJob() *Job {
	return &Job{ID: uuid.New()}
}

// Run writes every ImageJob's copies to w in order, framed per §4.6: each
// copy gets its own SwitchDynamicCommandMode..raster-payload sequence,
// PageIndex resets Starting/Other/Last within each image's own copy
// count, and the 0x0C/0x1A page terminator tracks position across the
// *entire* job, not just the current image.
func (j *Job) Run(w io.Writer) error {
	cw := NewCommandWriter(w)

	total := 0
	for _, img := range j.Images {
		total += img.Copies
	}

	done := 0
	for imgIdx, img := range j.Images {
		emitter := raster.NewEmitter(img.Geometry)
		emitter.Compress = img.Compress

		for copyIdx := 0; copyIdx < img.Copies; copyIdx++ {
			done++

			page := PageOther
			if copyIdx == 0 {
				page = PageStarting
			}
			if copyIdx == img.Copies-1 {
				page = PageLast
			}

			if j.Debug {
				log.Printf("ptcbp: job %s: image %d copy %d/%d: page=%d", j.ID, imgIdx, copyIdx+1, img.Copies, page)
			}

			if err := cw.SwitchDynamicCommandMode(); err != nil {
				return err
			}
			if err := cw.PrintInformation(img.MediaType, img.Geometry.MediaWidthByte, img.Source.Width(), page); err != nil {
				return err
			}
			if err := cw.VariousMode(img.VariousFlags); err != nil {
				return err
			}
			if err := cw.PageNumberInCutEachLabels(1); err != nil {
				return err
			}
			if err := cw.AdvancedMode(img.AdvancedFlags); err != nil {
				return err
			}
			if err := cw.SpecifyMarginAmount(img.MarginAmount); err != nil {
				return err
			}
			comp := CompressionNone
			if img.Compress {
				comp = CompressionTIFF
			}
			if err := cw.SelectCompression(comp); err != nil {
				return err
			}
			if err := emitter.Emit(cw.Writer(), img.Source); err != nil {
				return err
			}
			if err := cw.PageTerminator(done == total); err != nil {
				return err
			}
		}
	}

	return nil
}
