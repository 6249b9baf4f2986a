package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/service"
	"github.com/christopherklint97/planr/internal/store"
	"github.com/christopherklint97/planr/internal/tui"
)

var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Send one message to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSay,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	RunE:  runChat,
}

var voiceCmd = &cobra.Command{
	Use:   "voice <audio-file>",
	Short: "Submit a voice recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoice,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation turns",
	RunE:  runHistory,
}

// chatHistoryTurns is how many earlier turns the chat view starts with.
const chatHistoryTurns = 20

func init() {
	sayCmd.Flags().Bool("voice-reply", false, "Ask for a spoken reply")
	voiceCmd.Flags().String("preference", "", "Voice for the reply (defaults to the user's preference)")
	historyCmd.Flags().IntP("limit", "n", store.DefaultHistoryLimit, "Number of turns to show")

	rootCmd.AddCommand(sayCmd, chatCmd, voiceCmd, historyCmd)
}

func runSay(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	replyChannel := models.ChannelText
	if v, _ := cmd.Flags().GetBool("voice-reply"); v {
		replyChannel = models.ChannelVoice
	}

	conv, err := e.svc.ProcessConversation(service.ConversationInput{
		UserID:       userID,
		Message:      strings.Join(args, " "),
		MessageType:  models.ChannelText,
		ResponseType: replyChannel,
	})
	if err != nil {
		return fmt.Errorf("processing message: %w", err)
	}

	fmt.Println(conv.Response)
	fmt.Printf("(intent: %s)\n", conv.Intent)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}
	u, err := e.svc.GetUser(userID)
	if err != nil {
		return err
	}
	history, err := e.svc.ConversationHistory(userID, chatHistoryTurns)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	send := func(message string) (*store.Conversation, error) {
		return e.svc.ProcessConversation(service.ConversationInput{
			UserID:      userID,
			Message:     message,
			MessageType: models.ChannelText,
		})
	}

	app := tui.NewApp(u.Name, send, history)
	if _, err := tea.NewProgram(app).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runVoice(cmd *cobra.Command, args []string) error {
	audio, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("audio file %s is empty", args[0])
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	pref, _ := cmd.Flags().GetString("preference")
	if pref == "" {
		u, err := e.svc.GetUser(userID)
		if err != nil {
			return err
		}
		if u.VoicePreference != nil {
			pref = *u.VoicePreference
		}
	}

	conv, err := e.svc.ProcessVoiceInput(service.VoiceInput{
		UserID:          userID,
		AudioData:       base64.StdEncoding.EncodeToString(audio),
		VoicePreference: pref,
	})
	if err != nil {
		return fmt.Errorf("processing voice input: %w", err)
	}

	fmt.Println(conv.Response)
	fmt.Printf("(reply as %s)\n", conv.ResponseType)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	turns, err := e.svc.ConversationHistory(userID, limit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(turns) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	for _, c := range turns {
		fmt.Printf("%s  [%s/%s]  %s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.MessageType,
			c.Intent,
			c.Message,
		)
		fmt.Printf("                  -> %s\n", c.Response)
	}
	return nil
}
