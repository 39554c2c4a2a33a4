package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rarchives/ir/internal/hash"
	"github.com/rarchives/ir/internal/logger"
)

// frameSelect keeps every sixth frame plus all keyframes; static
// segments collapse later through the per-video dhash dedup.
const frameSelect = `select=not(mod(n\,6))+eq(pict_type\,I)`

type Frame struct {
	Hash  []byte
	Thumb image.Image
}

type VideoInfo struct {
	Codec    string
	Width    int
	Height   int
	Bitrate  int
	Duration int
	Frames   int
	Format   string
	Raw      json.RawMessage
}

type ExtractResult struct {
	Frames []Frame
	Info   VideoInfo
}

// Extractor shells out to ffmpeg/ffprobe. Frames stream back as
// concatenated JPEGs on stdout and are carved on the EOI marker; the
// input is fed from a separate goroutine so neither pipe can fill up
// and deadlock the child.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	tnSize      int
	log         *logger.Logger
}

func NewExtractor(tnSize int, baseLog *logger.Logger) *Extractor {
	return &Extractor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		tnSize:      tnSize,
		log:         baseLog.With("service", "Extractor"),
	}
}

func (e *Extractor) AssertReady(ctx context.Context) error {
	for _, bin := range []string{e.ffmpegPath, e.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

// Extract samples, dedups and thumbnails the frames of a video held in
// memory, and probes its container. ext is the container hint ("mp4",
// "webm"). MP4s whose moov atom sits at the end of the file cannot be
// decoded from a pipe; those are retried once through a temp file.
func (e *Extractor) Extract(ctx context.Context, buf []byte, ext string) (*ExtractResult, error) {
	frames, err := e.extractFrames(ctx, buf, ext, "")
	if err != nil {
		return nil, err
	}

	if len(frames) == 0 && ext == "mp4" {
		e.log.Info("No frames from pipe, retrying mp4 via temp file")
		tmp, err := os.CreateTemp("", "ir-video-*.mp4")
		if err != nil {
			return nil, fmt.Errorf("spool video: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(buf); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("spool video: %w", err)
		}
		tmp.Close()

		frames, err = e.extractFrames(ctx, nil, ext, tmp.Name())
		if err != nil {
			return nil, err
		}
		info, err := e.probe(ctx, nil, tmp.Name())
		if err != nil {
			return nil, err
		}
		return &ExtractResult{Frames: frames, Info: info}, nil
	}

	info, err := e.probe(ctx, buf, "")
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Frames: frames, Info: info}, nil
}

func (e *Extractor) extractFrames(ctx context.Context, buf []byte, ext, path string) ([]Frame, error) {
	input := path
	if input == "" {
		input = "pipe:" + ext
	}
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-threads", "1",
		"-i", input,
		"-vf", frameSelect,
		"-vsync", "0",
		"-f", "image2pipe",
		"-loglevel", "error",
		"pipe:jpg",
	)

	var feed func() error
	if path == "" {
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		feed = func() error {
			// ffmpeg may stop reading once it has what it needs;
			// a short write here is not an error.
			_, _ = w.Write(buf)
			_ = w.Close()
			return nil
		}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	var frames []Frame
	seen := make(map[string]struct{})

	g, _ := errgroup.WithContext(ctx)
	if feed != nil {
		g.Go(feed)
	}
	g.Go(func() error {
		return scanJPEGStream(stdout, func(raw []byte) error {
			img, err := jpeg.Decode(bytes.NewReader(raw))
			if err != nil {
				e.log.Warn("Skipping undecodable frame", "error", err)
				return nil
			}
			thumb := Thumbnail(img, e.tnSize)
			h := hash.Dhash(thumb)
			if _, dup := seen[string(h)]; dup {
				return nil
			}
			seen[string(h)] = struct{}{}
			frames = append(frames, Frame{Hash: h, Thumb: thumb})
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return frames, nil
}

func (e *Extractor) probe(ctx context.Context, buf []byte, path string) (VideoInfo, error) {
	input := path
	if input == "" {
		input = "pipe:"
	}
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json=c=1",
		"-show_format", "-show_streams",
		input,
	)
	if path == "" {
		cmd.Stdin = bytes.NewReader(buf)
	}
	out, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return flattenProbe(out)
}

type probeDoc struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		BitRate   string `json:"bit_rate"`
		NbFrames  string `json:"nb_frames"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatLongName string `json:"format_long_name"`
		Duration       string `json:"duration"`
	} `json:"format"`
}

// flattenProbe reduces the ffprobe document to the columns the store
// keeps: the first video stream's codec/geometry plus the container's
// long format name. Duration falls back from stream to format.
func flattenProbe(raw []byte) (VideoInfo, error) {
	var doc probeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return VideoInfo{}, fmt.Errorf("parse probe: %w", err)
	}

	info := VideoInfo{
		Format: doc.Format.FormatLongName,
		Raw:    json.RawMessage(raw),
	}
	for _, s := range doc.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Codec = s.CodecName
		info.Width = s.Width
		info.Height = s.Height
		info.Bitrate = atoiOrZero(s.BitRate)
		info.Frames = atoiOrZero(s.NbFrames)
		if s.Duration != "" {
			info.Duration = floatSecondsOrZero(s.Duration)
		} else {
			info.Duration = floatSecondsOrZero(doc.Format.Duration)
		}
		break
	}
	return info, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func floatSecondsOrZero(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
