package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"agrichain/internal/audio"
)

type VoiceInput struct {
	Query string `json:"query" validate:"notblank"`
}

type VoiceReply struct {
	AudioDataURI string `json:"audioDataUri"`
}

type voiceText struct {
	Response string `json:"response"`
}

var voiceFlow = newFlow[voiceText]("voice_response", voiceReplySchema)

// VoiceAssistance answers a spoken-style question in the configured language
// and returns the answer as a WAV data URI.
func (s *Service) VoiceAssistance(ctx context.Context, in VoiceInput) Result[VoiceReply] {
	return perform(ctx, s, "getVoiceAssistance", "An unexpected error occurred while generating the voice response.", in,
		func(ctx context.Context, in VoiceInput) (VoiceReply, error) {
			text, err := voiceFlow.run(ctx, s.gen, s.logger, voiceFlow.prompt(renderVoicePrompt(in, s.language)))
			if err != nil {
				return VoiceReply{}, err
			}
			if strings.TrimSpace(text.Response) == "" {
				return VoiceReply{}, errors.New("usecase: failed to generate a text response")
			}

			speech, err := s.speech.Synthesize(ctx, text.Response)
			if err != nil {
				return VoiceReply{}, err
			}
			if len(speech.Data) == 0 {
				return VoiceReply{}, errors.New("usecase: failed to generate audio from the text response")
			}

			wav, err := audio.EncodeWAV(speech.Data, pcmFormat(s.format, speech.MIMEType))
			if err != nil {
				return VoiceReply{}, fmt.Errorf("usecase: package speech: %w", err)
			}
			return VoiceReply{AudioDataURI: audio.DataURI(wav)}, nil
		})
}

// pcmFormat lets a "rate=" parameter on the synthesized MIME type, as in
// "audio/L16;codec=pcm;rate=24000", override the configured sample rate.
func pcmFormat(base audio.Format, mimeType string) audio.Format {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return base
	}
	if rate, err := strconv.Atoi(params["rate"]); err == nil && rate > 0 {
		base.SampleRate = rate
	}
	return base
}
