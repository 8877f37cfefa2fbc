// Package ddv implements a decoder for the DDV full-motion-video
// container: a demuxer plus the video and audio codecs that turn a
// DDV byte stream into RGB frames and 16-bit PCM samples.
//
// The high-level DDV interface combines all three. Open a stream with
// New and pull one frame at a time with Decode; the caller owns the
// pixel and sample buffers and decides timing and presentation:
//
//	dec, err := ddv.New(file)
//	pixels := make([]uint32, dec.Width()*dec.Height())
//	samples := make([]int16, dec.SamplesPerFrame()*ddv.Channels)
//	for {
//		ok, err := dec.Decode(pixels, samples)
//		if err != nil || !ok {
//			break
//		}
//		// present pixels / queue samples
//	}
//
// Pixels are written row-major as 0x00BBGGRR; there is no alpha in
// the format. Audio is two interleaved channels of signed 16-bit PCM.
//
// Decoding is bit-exact with the original game's playback. Video
// frames are delta-coded against the decoder's internal block state,
// so frames must be decoded in order and the decoder cannot seek or
// resynchronize after an error: the first error is latched and
// returned by every later call.
//
// The lower level Demux, Video and Audio types can be used directly
// when the raw payloads come from a different source, or to extract
// payloads without decoding them.
package ddv

import (
	"errors"
	"image"
	"io"
)

// Errors returned by the decoder.
var (
	// ErrInvalidMagic is returned when the stream does not start with
	// the DDV magic tag.
	ErrInvalidMagic = errors.New("invalid DDV magic")
	// ErrUnsupportedVersion is returned for any container version
	// other than 1, the only version seen in known data.
	ErrUnsupportedVersion = errors.New("unsupported DDV version")
	// ErrTruncated is returned when the stream ends inside a header
	// or a declared payload.
	ErrTruncated = errors.New("truncated DDV stream")
	// ErrCorruptFrame is returned when a frame payload does not
	// decode: a runaway coefficient stream, a run past the end of a
	// block, or audio data exhausted mid-frame.
	ErrCorruptFrame = errors.New("corrupt DDV frame")
	// ErrInvalidArgument is returned when a caller-provided output
	// buffer is too small for the declared dimensions.
	ErrInvalidArgument = errors.New("output buffer too small")
)

// DDV is the high-level interface combining the demuxer and the two
// codecs. Instances share no state; callers that want overlap can run
// one decoder per stream on separate goroutines.
type DDV struct {
	demux *Demux
	video *Video
	audio *Audio
	err   error
}

// New creates a decoder reading from r. The container headers are
// read immediately and all per-frame scratch is sized from them;
// Decode does not allocate in the steady state.
func New(r io.Reader) (*DDV, error) {
	demux, err := NewDemux(r)
	if err != nil {
		return nil, err
	}

	d := &DDV{demux: demux}

	if demux.HasVideo() {
		d.video = NewVideo(int(demux.video.width), int(demux.video.height),
			int(demux.video.maxVideoFrameSize))
	}

	if demux.HasAudio() {
		d.audio = NewAudio(int(demux.audio.singleAudioFrameSize))
	}

	return d, nil
}

// HasVideo reports whether the container declares a video branch.
func (d *DDV) HasVideo() bool {
	return d.demux.HasVideo()
}

// HasAudio reports whether the container declares an audio branch.
func (d *DDV) HasAudio() bool {
	return d.demux.HasAudio()
}

// Width returns the display width of the video branch, 0 without one.
func (d *DDV) Width() int {
	return int(d.demux.video.width)
}

// Height returns the display height of the video branch, 0 without one.
func (d *DDV) Height() int {
	return int(d.demux.video.height)
}

// FrameRate returns the frame rate in frames per second.
func (d *DDV) FrameRate() int {
	return d.demux.FrameRate()
}

// KeyFrameRate returns the key frame interval declared in the header.
// It is metadata for the caller; the bitstream itself carries no
// key frame markers.
func (d *DDV) KeyFrameRate() int {
	return int(d.demux.video.keyFrameRate)
}

// NumFrames returns the number of frames in the container.
func (d *DDV) NumFrames() int {
	return d.demux.NumFrames()
}

// SampleRate returns the audio sample rate, 0 without an audio branch.
func (d *DDV) SampleRate() int {
	return int(d.demux.audio.sampleRate)
}

// SamplesPerFrame returns the per-channel sample count of one audio
// frame, 0 without an audio branch.
func (d *DDV) SamplesPerFrame() int {
	if d.audio == nil {
		return 0
	}

	return d.audio.SamplesPerFrame()
}

// Decode reads and decodes the next frame on both enabled branches.
//
// pixels receives width*height 0x00BBGGRR values and samples receives
// SamplesPerFrame()*Channels interleaved PCM samples. Either may be
// nil to skip that output; a buffer passed for a branch the container
// does not declare is ignored. Video is decoded even when pixels is
// nil, because delta frames depend on every frame advancing the
// internal block state.
//
// Decode returns false with a nil error once all frames have been
// decoded; no input is consumed past that point. After any error the
// decoder is dead and every later call returns the same error.
func (d *DDV) Decode(pixels []uint32, samples []int16) (bool, error) {
	if d.err != nil {
		return false, d.err
	}

	video, audio, ok, err := d.demux.NextFrame()
	if err != nil {
		d.err = err
		return false, err
	}
	if !ok {
		return false, nil
	}

	if d.video != nil {
		if err := d.video.Decode(video, pixels); err != nil {
			d.err = err
			return false, err
		}
	}

	if d.audio != nil && samples != nil {
		if err := d.audio.Decode(audio, samples); err != nil {
			d.err = err
			return false, err
		}
	}

	return true, nil
}

// RGBA converts a decoded pixel buffer into a newly allocated
// image.RGBA with alpha forced opaque.
func (d *DDV) RGBA(pixels []uint32) *image.RGBA {
	w, h := d.Width(), d.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i := 0; i < w*h && i < len(pixels); i++ {
		p := pixels[i]
		img.Pix[i*4+0] = byte(p)
		img.Pix[i*4+1] = byte(p >> 8)
		img.Pix[i*4+2] = byte(p >> 16)
		img.Pix[i*4+3] = 0xFF
	}

	return img
}
