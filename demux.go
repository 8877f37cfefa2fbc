package ddv

import (
	"encoding/binary"
	"io"
)

// Container flags in the file header.
const (
	containsVideo = 1 << 0
	containsAudio = 1 << 1
)

type fileHeader struct {
	contains  uint32
	frameRate uint32
	numFrames uint32
}

type videoHeader struct {
	unknown           uint32
	width             uint32
	height            uint32
	maxAudioFrameSize uint32
	maxVideoFrameSize uint32
	keyFrameRate      uint32
}

type audioHeader struct {
	format               uint32
	sampleRate           uint32
	maxAudioFrameSize    uint32
	singleAudioFrameSize uint32
	numInterleaveFrames  uint32
}

// Demux reads the DDV container framing: the fixed headers, the
// per-frame size table and each frame's {video, audio} payload split.
// The source is consumed strictly forward; the demuxer never seeks.
type Demux struct {
	r io.Reader

	file  fileHeader
	video videoHeader
	audio audioHeader

	hasVideo bool
	hasAudio bool

	interleaveSizes []uint32
	frameSizes      []uint32
	currentFrame    int

	videoData []byte
	audioData []byte

	scratch [4]byte
}

var ddvMagic = [4]byte{'D', 'D', 'V', 0}

// NewDemux reads and validates the container headers and positions the
// stream past the interleaved audio preroll, ready for the first
// frame.
func NewDemux(r io.Reader) (*Demux, error) {
	d := &Demux{r: r}

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, truncated(err)
	}
	if magic != ddvMagic {
		return nil, ErrInvalidMagic
	}

	version, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		// Version 1 is the only one seen in any known data.
		return nil, ErrUnsupportedVersion
	}

	if err := d.readUint32s(&d.file.contains, &d.file.frameRate, &d.file.numFrames); err != nil {
		return nil, err
	}

	d.hasVideo = d.file.contains&containsVideo != 0
	d.hasAudio = d.file.contains&containsAudio != 0

	if d.hasVideo {
		err := d.readUint32s(&d.video.unknown, &d.video.width, &d.video.height,
			&d.video.maxAudioFrameSize, &d.video.maxVideoFrameSize, &d.video.keyFrameRate)
		if err != nil {
			return nil, err
		}
	}

	if d.hasAudio {
		err := d.readUint32s(&d.audio.format, &d.audio.sampleRate, &d.audio.maxAudioFrameSize,
			&d.audio.singleAudioFrameSize, &d.audio.numInterleaveFrames)
		if err != nil {
			return nil, err
		}

		d.interleaveSizes, err = d.readSizes(int(d.audio.numInterleaveFrames))
		if err != nil {
			return nil, err
		}
	}

	d.frameSizes, err = d.readSizes(int(d.file.numFrames))
	if err != nil {
		return nil, err
	}

	// The interleaved audio preroll payloads sit between the frame
	// size table and the first frame; skip them.
	var preroll int64
	for _, size := range d.interleaveSizes {
		preroll += int64(size)
	}
	if preroll > 0 {
		if _, err := io.CopyN(io.Discard, r, preroll); err != nil {
			return nil, truncated(err)
		}
	}

	if d.hasVideo {
		d.videoData = make([]byte, 0, d.video.maxVideoFrameSize)
	}

	maxAudio := d.audio.maxAudioFrameSize
	if d.video.maxAudioFrameSize > maxAudio {
		maxAudio = d.video.maxAudioFrameSize
	}
	if d.hasAudio {
		d.audioData = make([]byte, 0, maxAudio)
	}

	return d, nil
}

// HasVideo reports whether the container declares a video branch.
func (d *Demux) HasVideo() bool {
	return d.hasVideo
}

// HasAudio reports whether the container declares an audio branch.
func (d *Demux) HasAudio() bool {
	return d.hasAudio
}

// NumFrames returns the number of frames declared in the header.
func (d *Demux) NumFrames() int {
	return int(d.file.numFrames)
}

// FrameRate returns the frame rate declared in the header.
func (d *Demux) FrameRate() int {
	return int(d.file.frameRate)
}

// NextFrame reads the next frame's payloads into internal buffers that
// stay valid until the following call. ok is false once all frames
// have been read; no input is consumed past that point.
func (d *Demux) NextFrame() (video, audio []byte, ok bool, err error) {
	if d.currentFrame >= len(d.frameSizes) {
		return nil, nil, false, nil
	}

	total := int(d.frameSizes[d.currentFrame])

	switch {
	case d.hasVideo && d.hasAudio:
		// The first dword of the payload is the video size; the
		// audio data is whatever remains of the frame after it.
		videoSize32, err := d.readUint32()
		if err != nil {
			return nil, nil, false, err
		}
		videoSize := int(videoSize32)
		if videoSize > total {
			return nil, nil, false, ErrCorruptFrame
		}

		video, err = d.readPayload(d.videoData, videoSize)
		if err != nil {
			return nil, nil, false, err
		}
		audio, err = d.readPayload(d.audioData, total-videoSize)
		if err != nil {
			return nil, nil, false, err
		}

	case d.hasAudio:
		audio, err = d.readPayload(d.audioData, total)
		if err != nil {
			return nil, nil, false, err
		}

	case d.hasVideo:
		video, err = d.readPayload(d.videoData, total)
		if err != nil {
			return nil, nil, false, err
		}
	}

	d.currentFrame++

	return video, audio, true, nil
}

func (d *Demux) readPayload(buf []byte, size int) ([]byte, error) {
	if size < 0 || size > cap(buf) {
		return nil, ErrCorruptFrame
	}

	p := buf[:size]
	if _, err := io.ReadFull(d.r, p); err != nil {
		return nil, truncated(err)
	}

	return p, nil
}

func (d *Demux) readUint32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:]); err != nil {
		return 0, truncated(err)
	}

	return binary.LittleEndian.Uint32(d.scratch[:]), nil
}

func (d *Demux) readUint32s(fields ...*uint32) error {
	for _, f := range fields {
		v, err := d.readUint32()
		if err != nil {
			return err
		}
		*f = v
	}

	return nil
}

// readSizes reads a count-prefixed size table entry by entry, so a
// bogus count in a corrupt header fails with ErrTruncated instead of
// a huge allocation.
func (d *Demux) readSizes(count int) ([]uint32, error) {
	if count <= 0 {
		return nil, nil
	}

	capHint := count
	if capHint > 4096 {
		capHint = 4096
	}

	sizes := make([]uint32, 0, capHint)
	for i := 0; i < count; i++ {
		v, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, v)
	}

	return sizes, nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}

	return err
}
