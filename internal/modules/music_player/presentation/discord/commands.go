package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a song or add it to the queue.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search query or URL",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause the currently playing song.",
		},
		{
			Name:        "resume",
			Description: "Resume the currently paused song.",
		},
		{
			Name:        "skip",
			Description: "Skips the current playing song",
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue.",
		},
		{
			Name:        "queue",
			Description: "Show the current music queue.",
		},
	}
}
