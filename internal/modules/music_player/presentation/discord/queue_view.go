package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultQueueViewTimeout is how long a queue view stays interactive without navigation.
const DefaultQueueViewTimeout = 60 * time.Second

// QueueComponentPrefix is the custom ID prefix of queue view buttons.
const QueueComponentPrefix = "queue"

const (
	queueActionPrev = "prev"
	queueActionNext = "next"
)

var (
	// ErrViewExpired is returned when navigating a view that timed out or never existed.
	ErrViewExpired = errors.New("queue view has expired")
	// ErrNotRequester is returned when someone other than the requester navigates a view.
	ErrNotRequester = errors.New("only the requester can navigate this queue view")
)

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type queueView struct {
	requesterID snowflake.ID
	tracks      []*domain.Track
	page        int
	responder   bot.Responder

	// generation invalidates expiry callbacks scheduled before the last navigation.
	generation uint64
	stopTimer  func() bool
}

// QueueViews tracks the open paginated queue messages.
type QueueViews struct {
	pageSize  int
	timeout   time.Duration
	afterFunc afterFunc
	newID     func() string

	mu    sync.Mutex
	views map[string]*queueView
}

// NewQueueViews creates a QueueViews.
func NewQueueViews(pageSize int, timeout time.Duration) *QueueViews {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if timeout <= 0 {
		timeout = DefaultQueueViewTimeout
	}
	return &QueueViews{
		pageSize:  pageSize,
		timeout:   timeout,
		afterFunc: realAfterFunc,
		newID:     uuid.NewString,
		views:     make(map[string]*queueView),
	}
}

// Open registers a view over a snapshot of tracks and returns its id and first page.
// responder is used to disable the view's buttons when it expires.
func (v *QueueViews) Open(
	requesterID snowflake.ID,
	tracks []*domain.Track,
	responder bot.Responder,
) (string, domain.QueuePage) {
	id := v.newID()
	view := &queueView{
		requesterID: requesterID,
		tracks:      tracks,
		responder:   responder,
	}

	v.mu.Lock()
	v.views[id] = view
	v.schedule(id, view)
	v.mu.Unlock()

	return id, domain.Paginate(tracks, 0, v.pageSize)
}

// Navigate moves the view delta pages and restarts its idle timer.
func (v *QueueViews) Navigate(viewID string, actorID snowflake.ID, delta int) (domain.QueuePage, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	view, ok := v.views[viewID]
	if !ok {
		return domain.QueuePage{}, ErrViewExpired
	}
	if actorID != view.requesterID {
		return domain.QueuePage{}, ErrNotRequester
	}

	page := domain.Paginate(view.tracks, view.page+delta, v.pageSize)
	view.page = page.Page

	view.stopTimer()
	v.schedule(viewID, view)

	return page, nil
}

// Len returns the number of open views.
func (v *QueueViews) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.views)
}

// Close cancels every pending expiry without editing the messages.
func (v *QueueViews) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for id, view := range v.views {
		view.stopTimer()
		delete(v.views, id)
	}
}

// schedule must be called with mu held.
func (v *QueueViews) schedule(id string, view *queueView) {
	view.generation++
	generation := view.generation
	view.stopTimer = v.afterFunc(v.timeout, func() {
		v.expire(id, generation)
	})
}

func (v *QueueViews) expire(id string, generation uint64) {
	v.mu.Lock()
	view, ok := v.views[id]
	if !ok || view.generation != generation {
		v.mu.Unlock()
		return
	}
	delete(v.views, id)
	page := domain.Paginate(view.tracks, view.page, v.pageSize)
	v.mu.Unlock()

	components := queueComponents(id, page, true)
	if err := view.responder.Edit(&discordgo.WebhookEdit{Components: &components}); err != nil {
		slog.Warn("failed to disable expired queue view", "view", id, "error", err)
	}
}

// HandleComponent handles the queue view's navigation buttons.
func (v *QueueViews) HandleComponent(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	viewID, delta, ok := parseQueueCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return respondEphemeral(r, "Unknown queue action.")
	}

	actorID, err := snowflake.Parse(interactionUserID(i))
	if err != nil {
		return respondError(r, "Invalid user")
	}

	page, err := v.Navigate(viewID, actorID, delta)
	switch {
	case errors.Is(err, ErrViewExpired):
		return respondEphemeral(r, "This queue view has expired. Use /queue again.")
	case errors.Is(err, ErrNotRequester):
		return respondEphemeral(r, "Only the person who opened this queue can use these buttons.")
	case err != nil:
		return err
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(page)},
			Components: queueComponents(viewID, page, false),
		},
	})
}

func queueCustomID(action, viewID string) string {
	return QueueComponentPrefix + ":" + action + ":" + viewID
}

// parseQueueCustomID splits "queue:<action>:<view id>" into the view id and page delta.
func parseQueueCustomID(customID string) (string, int, bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != QueueComponentPrefix || parts[2] == "" {
		return "", 0, false
	}

	switch parts[1] {
	case queueActionPrev:
		return parts[2], -1, true
	case queueActionNext:
		return parts[2], 1, true
	default:
		return "", 0, false
	}
}

func queueEmbed(page domain.QueuePage) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, track := range page.Tracks {
		fmt.Fprintf(&sb, "**%d.** %s\n", page.Position(i), track.Title)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎶 Music Queue (Page %d/%d)", page.Page+1, page.TotalPages),
		Description: sb.String(),
		Color:       colorQueue,
	}
}

// queueComponents builds the navigation row. Expired views get both buttons disabled.
func queueComponents(viewID string, page domain.QueuePage, expired bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "⬅️ Prev",
					Style:    discordgo.PrimaryButton,
					CustomID: queueCustomID(queueActionPrev, viewID),
					Disabled: expired || !page.HasPrevious(),
				},
				discordgo.Button{
					Label:    "Next ➡️",
					Style:    discordgo.PrimaryButton,
					CustomID: queueCustomID(queueActionNext, viewID),
					Disabled: expired || !page.HasNext(),
				},
			},
		},
	}
}
