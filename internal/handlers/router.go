package handlers

import (
	"context"
	"errors"
	"strings"

	"finbot/internal/conversation"
)

const unknownInputText = "I didn't understand that. Send /help to see what I can do."

// CommandFunc handles one bot command.
type CommandFunc func(ctx context.Context, u Update) Response

// Command is one entry of the bot's command menu.
type Command struct {
	Name        string
	Args        string
	Description string
	handle      CommandFunc
}

// Router dispatches updates to the handler that owns them. Plain text goes
// to the actor's active flow.
type Router struct {
	machine  *conversation.Machine
	voice    *VoiceHandler
	commands []Command
	byName   map[string]CommandFunc
	helpText string
}

// NewRouter creates a Router with the bot's command table.
func NewRouter(machine *conversation.Machine, authH *AuthHandler, cardH *CardHandler, categoryH *CategoryHandler, voiceH *VoiceHandler) *Router {
	r := &Router{
		machine: machine,
		voice:   voiceH,
	}
	r.commands = []Command{
		{Name: "start", Description: "create your PIN", handle: authH.Start},
		{Name: "login", Description: "sign in (sessions last 24 hours)", handle: authH.Login},
		{Name: "add_card", Description: "register a card", handle: cardH.AddCard},
		{Name: "list_cards", Description: "list your cards", handle: cardH.ListCards},
		{Name: "delete_card", Args: "<id>", Description: "remove a card", handle: cardH.DeleteCard},
		{Name: "add_category", Args: "<name>", Description: "create a category", handle: categoryH.AddCategory},
		{Name: "list_categories", Description: "list your categories", handle: categoryH.ListCategories},
		{Name: "delete_category", Args: "<id>", Description: "remove a category", handle: categoryH.DeleteCategory},
		{Name: "cancel", Description: "stop what you are doing", handle: authH.Cancel},
		{Name: "help", Description: "show this message", handle: r.help},
	}
	r.byName = make(map[string]CommandFunc, len(r.commands))
	for _, cmd := range r.commands {
		r.byName[cmd.Name] = cmd.handle
	}
	r.helpText = renderHelp(r.commands)
	return r
}

// Commands returns the command menu in display order.
func (r *Router) Commands() []Command {
	return r.commands
}

func renderHelp(commands []Command) string {
	var b strings.Builder
	b.WriteString("🤖 What I can do:\n\n")
	for _, cmd := range commands {
		b.WriteString("/" + cmd.Name)
		if cmd.Args != "" {
			b.WriteString(" " + cmd.Args)
		}
		b.WriteString(" - " + cmd.Description + "\n")
	}
	b.WriteString("\n🎙️ Send a voice message (up to 1 minute) describing what you spent.")
	return b.String()
}

// Handle returns the reply to u.
func (r *Router) Handle(ctx context.Context, u Update) Response {
	switch {
	case u.Attachment != nil:
		return r.voice.HandleAudio(ctx, u)
	case u.IsCommand():
		cmd, ok := r.byName[u.Command]
		if !ok {
			return Response{Text: unknownInputText}
		}
		return cmd(ctx, u)
	default:
		return r.continueFlow(ctx, u)
	}
}

func (r *Router) continueFlow(ctx context.Context, u Update) Response {
	reply, err := r.machine.Handle(ctx, u.ActorID, u.Text)
	if errors.Is(err, conversation.ErrNoActiveFlow) {
		return Response{Text: unknownInputText}
	}

	resp := Response{Text: reply.Text, DeleteInput: reply.DeleteInput}
	if err != nil {
		resp.Text = joinParagraphs(renderError(ctx, err), reply.Text)
	}
	return resp
}

func (r *Router) help(_ context.Context, _ Update) Response {
	return Response{Text: r.helpText}
}
