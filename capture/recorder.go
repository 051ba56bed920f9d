package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ushitora-anqou/aqpong/util"
)

var ErrRecorderClosed = errors.New("recorder closed")

type RecorderOptions struct {
	Path          string
	Width, Height int
	FPS           int
	FfmpegPath    string
	// Codec is passed as -c:v when set.
	Codec string
	// Queue is the number of frames buffered between WriteFrame and ffmpeg.
	Queue int
}

type runner func(stream *ffmpeg.Stream, in io.Reader) error

func runFfmpeg(stream *ffmpeg.Stream, in io.Reader) error {
	return stream.WithInput(in).ErrorToStdOut().Run()
}

// Recorder streams raw RGBA frames to an ffmpeg process. WriteFrame blocks
// when the queue is full.
type Recorder struct {
	opts   RecorderOptions
	frames chan []byte
	pw     *io.PipeWriter
	done   chan struct{}

	mu      sync.Mutex
	err     error
	closed  bool
	written uint64
}

func outputStream(opts RecorderOptions) *ffmpeg.Stream {
	inputArgs := ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"framerate": strconv.Itoa(opts.FPS),
	}
	outputArgs := ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
	}
	if opts.Codec != "" {
		outputArgs["c:v"] = opts.Codec
	}

	stream := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.Path, outputArgs).
		OverWriteOutput()
	if opts.FfmpegPath != "" {
		stream = stream.SetFfmpegPath(opts.FfmpegPath)
	}
	return stream
}

func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	return newRecorder(opts, runFfmpeg)
}

func newRecorder(opts RecorderOptions, run runner) (*Recorder, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("recorder: empty output path")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("recorder: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("recorder: invalid frame rate %d", opts.FPS)
	}
	if opts.Queue <= 0 {
		opts.Queue = 8
	}

	pr, pw := io.Pipe()
	rec := &Recorder{
		opts:   opts,
		frames: make(chan []byte, opts.Queue),
		pw:     pw,
		done:   make(chan struct{}),
	}

	stream := outputStream(opts)
	util.Trace("recorder: ffmpeg %v", stream.GetArgs())

	errc := make(chan error, 1)
	go func() {
		err := run(stream, pr)
		// Unblock the writer if ffmpeg exits early.
		pr.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	go func() {
		defer close(rec.done)
		var werr error
		for buf := range rec.frames {
			if werr != nil {
				continue
			}
			if _, err := pw.Write(buf); err != nil {
				werr = fmt.Errorf("recorder: write frame: %w", err)
			}
		}
		pw.Close()
		if err := <-errc; err != nil && werr == nil {
			werr = fmt.Errorf("recorder: ffmpeg: %w", err)
		}
		rec.mu.Lock()
		rec.err = werr
		rec.mu.Unlock()
	}()

	return rec, nil
}

// WriteFrame queues a copy of img. img must have the recorder's size.
func (r *Recorder) WriteFrame(img *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	b := img.Bounds()
	if b.Dx() != r.opts.Width || b.Dy() != r.opts.Height {
		return fmt.Errorf("recorder: frame size %dx%d, expected %dx%d", b.Dx(), b.Dy(), r.opts.Width, r.opts.Height)
	}

	rowLen := b.Dx() * 4
	buf := make([]byte, rowLen*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(buf[y*rowLen:(y+1)*rowLen], img.Pix[off:off+rowLen])
	}
	r.frames <- buf
	r.written++
	return nil
}

func (r *Recorder) Written() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Close flushes queued frames, ends the stream and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRecorderClosed
	}
	r.closed = true
	close(r.frames)
	r.mu.Unlock()

	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
