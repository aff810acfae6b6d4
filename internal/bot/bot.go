package bot

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// intents covers slash commands and the voice state cache used to find a member's channel.
const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config     *Config
	session    *discordgo.Session
	modules    []Module
	handlers   map[string]InteractionHandler
	components map[string]InteractionHandler
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:     cfg,
		modules:    make([]Module, 0),
		handlers:   make(map[string]InteractionHandler),
		components: make(map[string]InteractionHandler),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start initializes the bot, connects to Discord, and registers commands.
func (b *Bot) Start() error {
	// Create Discord session
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = intents
	b.session = session

	// Initialize modules
	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	// Build handler maps
	b.buildHandlerMap()

	// Register interaction handler
	b.session.AddHandler(b.handleInteraction)

	// Register module event handlers
	b.registerEventHandlers()

	// Open connection
	if err := b.session.Open(); err != nil {
		b.shutdownModules(b.modules)
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Register commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// Stop gracefully shuts down the bot.
// Modules stop while the gateway is still open so they can leave voice channels.
func (b *Bot) Stop() error {
	b.shutdownModules(b.modules)

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// shutdownModules shuts modules down in reverse initialization order.
func (b *Bot) shutdownModules(modules []Module) {
	for _, mod := range slices.Backward(modules) {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}
}

// initModules initializes all loaded modules.
// If one fails, the modules initialized before it are shut down again.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Config:  b.config,
		Session: b.session,
	}

	for i, mod := range b.modules {
		if err := initModule(mod, deps); err != nil {
			b.shutdownModules(b.modules[:i])
			return err
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

func initModule(mod Module, deps ModuleDependencies) error {
	if cm, ok := mod.(ConfigurableModule); ok {
		if err := cm.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	if err := mod.Init(deps); err != nil {
		return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
	}
	return nil
}

// buildHandlerMap builds the command name and component prefix to handler mappings.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		addHandlers(b.handlers, mod.CommandHandlers(), mod.Name(), "command")
		if cm, ok := mod.(ComponentModule); ok {
			addHandlers(b.components, cm.ComponentHandlers(), mod.Name(), "component")
		}
	}
}

func addHandlers(dst, src map[string]InteractionHandler, module, kind string) {
	for key, handler := range src {
		if _, dup := dst[key]; dup {
			slog.Warn("overriding handler", "kind", kind, "key", key, "module", module)
		}
		dst[key] = handler
	}
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the application's global commands with the modules' commands,
// which also removes commands left over from earlier versions.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		"", // Empty string registers commands globally
		commands,
	)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	for _, cmd := range registered {
		slog.Debug("registered command", "command", cmd.Name)
	}

	return nil
}

// route finds the handler for an interaction.
// The returned key names the command or component prefix for logging.
func (b *Bot) route(i *discordgo.InteractionCreate) (string, InteractionHandler, bool) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.handlers[name]
		return name, handler, ok
	case discordgo.InteractionMessageComponent:
		prefix, _, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
		handler, ok := b.components[prefix]
		return prefix, handler, ok
	default:
		return "", nil, false
	}
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// handleInteraction routes incoming interactions to the appropriate handler.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand &&
		i.Type != discordgo.InteractionMessageComponent {
		return
	}

	key, handler, ok := b.route(i)
	if !ok {
		slog.Warn("found no handler for interaction", "key", key, "type", i.Type.String())
		b.respondWithEmbed(s, i, "Unknown Command", "This command is not recognized.", colorYellow)
		return
	}

	responder := NewDiscordResponder(s, i.Interaction)
	if err := handler(s, i, responder); err != nil {
		slog.Error("failed to handle interaction", "key", key, "error", err)
		b.respondWithEmbed(s, i, "Error", "An error occurred while processing your command.",
			colorRed)
	}
}

// respondWithEmbed sends an embed response to an interaction.
func (b *Bot) respondWithEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	title, description string,
	color int,
) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
		},
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
