package assistant

import (
	"unicode/utf8"

	"github.com/christopherklint97/planr/internal/models"
)

// Turn is one message/reply exchange.
type Turn struct {
	Message        string
	Reply          string
	Intent         models.Intent
	MessageChannel models.Channel
	ReplyChannel   models.Channel
}

// Interpret produces a turn for a message. An empty reply channel means text.
func Interpret(message string, channel, replyChannel models.Channel) Turn {
	if replyChannel == "" {
		replyChannel = models.ChannelText
	}
	return Turn{
		Message:        message,
		Reply:          GenerateReply(message),
		Intent:         ClassifyIntent(message),
		MessageChannel: channel,
		ReplyChannel:   replyChannel,
	}
}

const (
	voicePreviewLen = 50
	voiceReply      = "I've received your voice message and processed it successfully."
)

// ProcessVoice stands in for speech recognition: it records a preview of the
// encoded audio instead of a transcript. Replies go out as voice only when
// the caller states a voice preference.
func ProcessVoice(audioData, voicePreference string) Turn {
	preview := audioData
	if utf8.RuneCountInString(preview) > voicePreviewLen {
		preview = string([]rune(preview)[:voicePreviewLen])
	}

	replyChannel := models.ChannelText
	if voicePreference != "" {
		replyChannel = models.ChannelVoice
	}

	return Turn{
		Message:        "Processed voice input: " + preview + "...",
		Reply:          voiceReply,
		Intent:         models.IntentVoiceProcessed,
		MessageChannel: models.ChannelVoice,
		ReplyChannel:   replyChannel,
	}
}
