package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects messages longer than this many characters.
const maxMessageLen = 2000

// Bot replies that callers can rely on.
const (
	replyIDRequired      = "Please provide an user id"
	replyInvalidID       = "Invalid user id"
	replyInvalidIDs      = "Invalid user id(s)"
	replyReasonRequired  = "Please provide a reason"
	replyNotFound        = "No reason found"
	replyPermission      = "You do not have permission to use this command"
	replySaved           = "Successfully saved"
	replyLookupFailed    = "Unable to look up that user right now"
	replySaveFailed      = "Unable to save reason right now"
	replyEmptyReason     = "(empty reason)"
	replyPartialTemplate = "Saved reason for %d of %d user(s) before a storage error"
)

// messageSender is the part of *discordgo.Session the bot replies through.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot answers lookup and setreason chat commands.
type Bot struct {
	access  *Access
	prefix  string
	logger  *slog.Logger
	session *discordgo.Session
}

// NewBot creates a Discord session for token. Call Open to connect.
func NewBot(token, prefix string, access *Access, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		access:  access,
		prefix:  prefix,
		logger:  logger,
		session: session,
	}
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.respond(context.Background(), s, m.Message)
}

// respond handles one chat message and sends the reply, if any.
func (b *Bot) respond(ctx context.Context, sender messageSender, msg *discordgo.Message) {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return
	}

	authorID, err := strconv.ParseUint(msg.Author.ID, 10, 64)
	if err != nil {
		b.logger.Warn("ignoring message with non-numeric author id", "author", msg.Author.ID)
		return
	}

	reply, ok := b.HandleCommand(ctx, authorID, msg.Content)
	if !ok {
		return
	}

	if _, err := sender.ChannelMessageSend(msg.ChannelID, truncateMessage(reply)); err != nil {
		b.logger.Error("sending reply failed", "error", err, "channel", msg.ChannelID)
	}
}

// HandleCommand runs the command in content on behalf of authorID and returns
// the reply. ok is false when content is not a command for this bot.
func (b *Bot) HandleCommand(ctx context.Context, authorID uint64, content string) (reply string, ok bool) {
	rest, found := strings.CutPrefix(content, b.prefix)
	if !found {
		return "", false
	}

	name, args := nextToken(rest)
	switch name {
	case "lookup":
		reply = b.lookup(ctx, authorID, args)
	case "setreason":
		reply = b.setReason(ctx, authorID, args)
	default:
		return "", false
	}

	b.logger.Info("bot command", "command", name, "author", authorID, "reply", reply)
	return reply, true
}

func (b *Bot) lookup(ctx context.Context, authorID uint64, args string) string {
	tok, _ := nextToken(args)
	if tok == "" {
		return replyIDRequired
	}

	userID, err := parseUserIDToken(tok)
	if err != nil {
		return replyInvalidID
	}

	rec, found, err := b.access.GetReason(ctx, BotCaller(authorID), userID)
	switch {
	case err != nil:
		return replyLookupFailed
	case !found:
		return replyNotFound
	case strings.TrimSpace(rec.Reason) == "":
		return replyEmptyReason
	default:
		return rec.Reason
	}
}

func (b *Bot) setReason(ctx context.Context, authorID uint64, args string) string {
	caller := BotCaller(authorID)
	if err := b.access.Authorize(caller, OpSetReason); err != nil {
		return replyPermission
	}

	if strings.TrimSpace(args) == "" {
		return replyIDRequired
	}

	ids, reason := splitLeadingIDs(args)
	if len(ids) == 0 {
		return replyInvalidIDs
	}
	if reason == "" {
		return replyReasonRequired
	}

	updated, err := b.access.SetReason(ctx, caller, ids, reason)
	switch {
	case err == nil:
		return replySaved
	case errors.Is(err, ErrForbidden):
		return replyPermission
	case errors.Is(err, ErrInvalidInput):
		return replyReasonRequired
	case len(updated) > 0:
		return fmt.Sprintf(replyPartialTemplate, len(updated), len(ids))
	default:
		return replySaveFailed
	}
}

// splitLeadingIDs parses the maximal leading run of user id tokens in args
// and returns them with the remaining text, trimmed of surrounding space.
func splitLeadingIDs(args string) ([]uint64, string) {
	var ids []uint64
	rest := strings.TrimLeftFunc(args, unicode.IsSpace)
	for rest != "" {
		tok, remainder := nextToken(rest)
		id, err := parseUserIDToken(tok)
		if err != nil {
			break
		}
		ids = append(ids, id)
		rest = remainder
	}
	return ids, strings.TrimSpace(rest)
}

// parseUserIDToken parses a decimal user id. A single leading '+' is allowed.
func parseUserIDToken(tok string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(tok, "+"), 10, 64)
}

// nextToken splits s at the first run of whitespace after its leading token.
func nextToken(s string) (tok, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

func truncateMessage(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxMessageLen-1]) + "…"
}
