package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	FFmpegPath       string        `env:"FFMPEG_PATH"        envDefault:"ffmpeg"`
	YTDLPPath        string        `env:"YTDLP_PATH"         envDefault:"yt-dlp"`
	AudioBitrate     int           `env:"AUDIO_BITRATE"      envDefault:"96000"`
	ResolveTimeout   time.Duration `env:"RESOLVE_TIMEOUT"    envDefault:"45s"`
	QueuePageSize    int           `env:"QUEUE_PAGE_SIZE"    envDefault:"10"`
	QueueViewTimeout time.Duration `env:"QUEUE_VIEW_TIMEOUT" envDefault:"60s"`
	PresenceInterval time.Duration `env:"PRESENCE_INTERVAL"  envDefault:"4s"`
}
