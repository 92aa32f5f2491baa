package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/campus-hub/campus-events-api/internal/models"
)

// DiscordAnnouncer posts newly published events to the campus community
// Discord channel.
type DiscordAnnouncer struct {
	session   *discordgo.Session
	channelID string
	log       *zap.Logger
}

func NewDiscordAnnouncer(session *discordgo.Session, channelID string, log *zap.Logger) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
		log:       log,
	}
}

func (a *DiscordAnnouncer) AnnounceEventPublished(event *models.Event) error {
	if a.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if a.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	capacity := "unlimited"
	if event.MaxAttendees != nil {
		capacity = fmt.Sprintf("%d spots", *event.MaxAttendees)
	}

	message := fmt.Sprintf("📅 **New Event Published**\n**%s**\n%s\n**When:** %s\n**Capacity:** %s\nRegistration open %s – %s",
		event.Title,
		event.Description,
		event.StartsAt.Format("2006-01-02 15:04"),
		capacity,
		event.RegistrationOpensAt.Format("2006-01-02 15:04"),
		event.RegistrationClosesAt.Format("2006-01-02 15:04"),
	)

	_, err := a.session.ChannelMessageSend(a.channelID, message)
	if err != nil {
		a.log.Error("failed to send discord announcement", zap.Uint("event_id", event.ID), zap.Error(err))
		return err
	}

	return nil
}
