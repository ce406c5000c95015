package audio

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0x7F}
	wav, err := EncodeWAV(pcm, DefaultFormat)
	require.NoError(t, err)
	require.Len(t, wav, 44+len(pcm))

	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "fmt ", string(wav[12:16]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	require.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]))
	require.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	require.Equal(t, "data", string(wav[36:40]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestWAV_RoundTrip(t *testing.T) {
	formats := []Format{
		DefaultFormat,
		{SampleRate: 44100, Channels: 2, BitDepth: 16},
		{SampleRate: 8000, Channels: 1, BitDepth: 8},
		{SampleRate: 48000, Channels: 2, BitDepth: 24},
	}
	for _, f := range formats {
		pcm := make([]byte, f.BlockAlign()*50)
		for i := range pcm {
			pcm[i] = byte(i * 7)
		}
		wav, err := EncodeWAV(pcm, f)
		require.NoError(t, err)

		gotFormat, gotPCM, err := DecodeWAV(wav)
		require.NoError(t, err)
		require.Equal(t, f, gotFormat)
		require.Equal(t, pcm, gotPCM)
	}
}

func TestEncodeWAV_EmptyPCM(t *testing.T) {
	wav, err := EncodeWAV(nil, DefaultFormat)
	require.NoError(t, err)
	require.Len(t, wav, 44)

	_, pcm, err := DecodeWAV(wav)
	require.NoError(t, err)
	require.Empty(t, pcm)
}

func TestEncodeWAV_PartialFrame(t *testing.T) {
	_, err := EncodeWAV([]byte{0x01, 0x02, 0x03}, DefaultFormat)
	require.Error(t, err)
	require.Contains(t, err.Error(), "frame size")
}

func TestFormat_Validate(t *testing.T) {
	require.NoError(t, DefaultFormat.Validate())
	require.Error(t, Format{SampleRate: 0, Channels: 1, BitDepth: 16}.Validate())
	require.Error(t, Format{SampleRate: 24000, Channels: 0, BitDepth: 16}.Validate())
	require.Error(t, Format{SampleRate: 24000, Channels: 1, BitDepth: 12}.Validate())
	require.Error(t, Format{SampleRate: 5_000_000_000, Channels: 1, BitDepth: 16}.Validate())
	require.Error(t, Format{SampleRate: 600_000_000, Channels: 2, BitDepth: 32}.Validate())
	require.NoError(t, Format{SampleRate: 192000, Channels: 8, BitDepth: 32}.Validate())
}

func TestEncodeWAV_RejectsByteRateOverflow(t *testing.T) {
	_, err := EncodeWAV(make([]byte, 4), Format{SampleRate: 1 << 31, Channels: 2, BitDepth: 16})
	require.Error(t, err)
}

func TestDecodeWAV_Rejects(t *testing.T) {
	_, _, err := DecodeWAV([]byte("not a wav file at all"))
	require.Error(t, err)

	wav, err := EncodeWAV([]byte{0, 0}, DefaultFormat)
	require.NoError(t, err)
	_, _, err = DecodeWAV(wav[:42])
	require.Error(t, err)

	wav[20] = 3 // IEEE float
	_, _, err = DecodeWAV(wav)
	require.Error(t, err)
	require.Contains(t, err.Error(), "format tag")
}

func TestDataURI(t *testing.T) {
	wav, err := EncodeWAV([]byte{0, 0}, DefaultFormat)
	require.NoError(t, err)
	uri := DataURI(wav)
	payload, ok := strings.CutPrefix(uri, "data:audio/wav;base64,")
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	require.Equal(t, wav, decoded)
}
