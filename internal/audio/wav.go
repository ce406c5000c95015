// Package audio wraps raw PCM sample data in a WAV (RIFF) container.
package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	headerSize   = 44
	formatPCM    = 1
	fmtChunkSize = 16
)

// Format describes interleaved little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat matches the speech models' output: 24 kHz mono 16-bit.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BitDepth: 16}

func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 || f.Channels > 0xFFFF {
		return fmt.Errorf("audio: invalid channel count %d", f.Channels)
	}
	if f.BitDepth <= 0 || f.BitDepth%8 != 0 || f.BitDepth > math.MaxUint16 {
		return fmt.Errorf("audio: bit depth must be a positive multiple of 8, got %d", f.BitDepth)
	}
	if f.BlockAlign() > math.MaxUint16 {
		return fmt.Errorf("audio: frame size %d does not fit a WAV header", f.BlockAlign())
	}
	// RIFF stores sample and byte rates as uint32.
	if uint64(f.SampleRate)*uint64(f.BlockAlign()) > math.MaxUint32 {
		return fmt.Errorf("audio: sample rate %d is too high for a WAV header", f.SampleRate)
	}
	return nil
}

// BlockAlign is the size in bytes of one frame across all channels.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

func (f Format) byteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// EncodeWAV prefixes pcm with a canonical 44-byte header.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(pcm)%f.BlockAlign() != 0 {
		return nil, fmt.Errorf("audio: pcm length %d is not a multiple of frame size %d", len(pcm), f.BlockAlign())
	}
	if uint64(len(pcm))+headerSize-8 > 0xFFFFFFFF {
		return nil, errors.New("audio: pcm too large for a RIFF container")
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	buf.WriteString("RIFF")
	writeLE(buf, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeLE(buf, uint32(fmtChunkSize))
	writeLE(buf, uint16(formatPCM))
	writeLE(buf, uint16(f.Channels))
	writeLE(buf, uint32(f.SampleRate))
	writeLE(buf, uint32(f.byteRate()))
	writeLE(buf, uint16(f.BlockAlign()))
	writeLE(buf, uint16(f.BitDepth))
	buf.WriteString("data")
	writeLE(buf, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// DecodeWAV parses a canonical PCM WAV and returns its format and samples.
// Unknown chunks between "fmt " and "data" are skipped.
func DecodeWAV(wav []byte) (Format, []byte, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return Format{}, nil, errors.New("audio: not a RIFF/WAVE stream")
	}
	var (
		f       Format
		haveFmt bool
	)
	off := 12
	for off+8 <= len(wav) {
		id := string(wav[off : off+4])
		size := int(binary.LittleEndian.Uint32(wav[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(wav) {
			return Format{}, nil, fmt.Errorf("audio: chunk %q overruns stream", id)
		}
		switch id {
		case "fmt ":
			if size < fmtChunkSize {
				return Format{}, nil, errors.New("audio: fmt chunk too short")
			}
			if tag := binary.LittleEndian.Uint16(wav[body:]); tag != formatPCM {
				return Format{}, nil, fmt.Errorf("audio: unsupported format tag %d", tag)
			}
			f.Channels = int(binary.LittleEndian.Uint16(wav[body+2:]))
			f.SampleRate = int(binary.LittleEndian.Uint32(wav[body+4:]))
			f.BitDepth = int(binary.LittleEndian.Uint16(wav[body+14:]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return Format{}, nil, errors.New("audio: data chunk before fmt chunk")
			}
			pcm := make([]byte, size)
			copy(pcm, wav[body:body+size])
			return f, pcm, nil
		}
		off = body + size + size%2
	}
	return Format{}, nil, errors.New("audio: no data chunk")
}

// DataURI renders an encoded WAV as a data URI.
func DataURI(wav []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)
}

func writeLE(buf *bytes.Buffer, v any) {
	// bytes.Buffer writes never fail
	_ = binary.Write(buf, binary.LittleEndian, v)
}
