/* Package convert builds and runs the external transcoder invocations
 * that extract marker segments and concatenate the results. It never
 * reorders the segment list it is given. */
package convert

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/biglinux/big-audio-converter-sub000/log"
	"github.com/biglinux/big-audio-converter-sub000/marker"
)

type ConversionRequest struct {
	Input        string           `validate:"required"`
	OutputFormat string           `validate:"required"`
	Segments     []marker.Segment `validate:"required,min=1"`
	Filters      string           /* optional -af chain applied during extraction */
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(marker.Segment)
		if s.Start < 0 {
			sl.ReportError(s.Start, "Start", "Start", "gte", "0")
		}
		if s.Stop <= s.Start {
			sl.ReportError(s.Stop, "Stop", "Stop", "gtfield", "Start")
		}
		if s.StartStr == "" || s.StopStr == "" {
			sl.ReportError(s.StartStr, "StartStr", "StartStr", "required", "")
		}
	}, marker.Segment{})
	return v
}

func (r ConversionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for i, s := range r.Segments {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
	}
	return nil
}

/* ExtractArgs is the transcoder argv (sans binary) cutting one segment
 * out of the input. The boundary strings are passed through verbatim;
 * -t carries the numeric length. */
func ExtractArgs(req ConversionRequest, seg marker.Segment, outPath string) []string {
	args := []string{
		"-y",
		"-v", "warning",
		"-accurate_seek",
		"-ss", seg.StartStr,
		"-i", req.Input,
		"-t", fmt.Sprintf("%.3f", seg.Stop-seg.Start),
		"-avoid_negative_ts", "1",
		"-map_metadata", "-1",
	}
	if req.Filters != "" {
		args = append(args, "-af", req.Filters)
	}
	return append(args, outPath)
}

/* ConcatList renders the concat-demuxer list file contents for the
 * given part paths, in order. */
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}

/* ConcatArgs is the transcoder argv joining the listed parts without
 * re-encoding. */
func ConcatArgs(listPath, outPath string) []string {
	return []string{
		"-y",
		"-v", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
}

/* Runner executes a conversion on a worker goroutine. Completion is
 * handed to marshal so it lands back on the caller's event loop. */
type Runner struct {
	FFmpeg string
}

type ConversionResult struct {
	Request ConversionRequest /* returned unchanged so a retry needs no re-derivation */
	Output  string
	Err     error
}

func (r *Runner) Convert(req ConversionRequest, outPath string, marshal func(func()), done func(ConversionResult)) error {
	if err := req.Validate(); err != nil {
		return err
	}
	go func() {
		out, err := r.run(req, outPath)
		marshal(func() {
			done(ConversionResult{Request: req, Output: out, Err: err})
		})
	}()
	return nil
}

func (r *Runner) run(req ConversionRequest, outPath string) (string, error) {
	workDir, err := os.MkdirTemp("", "wavecut-convert-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(workDir)

	if len(req.Segments) == 1 {
		seg := req.Segments[0]
		log.CUT.Printf("extracting segment #%d %s..%s", seg.Index, seg.StartStr, seg.StopStr)
		if err := r.ffmpeg(ExtractArgs(req, seg, outPath)); err != nil {
			return "", fmt.Errorf("segment #%d: %w", seg.Index, err)
		}
		return outPath, nil
	}

	parts := make([]string, 0, len(req.Segments))
	for i, seg := range req.Segments {
		part := filepath.Join(workDir, fmt.Sprintf("part%03d.%s", i, req.OutputFormat))
		log.CUT.Printf("extracting segment #%d %s..%s", seg.Index, seg.StartStr, seg.StopStr)
		if err := r.ffmpeg(ExtractArgs(req, seg, part)); err != nil {
			return "", fmt.Errorf("segment #%d: %w", seg.Index, err)
		}
		parts = append(parts, part)
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(parts)), 0644); err != nil {
		return "", err
	}
	log.CUT.Printf("concatenating %d parts", len(parts))
	if err := r.ffmpeg(ConcatArgs(listPath, outPath)); err != nil {
		return "", fmt.Errorf("concat: %w", err)
	}
	return outPath, nil
}

func (r *Runner) ffmpeg(args []string) error {
	cmd := exec.Command(r.FFmpeg, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
		}
		return err
	}
	return nil
}
