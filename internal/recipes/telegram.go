package recipes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/buildinfo"
	"github.com/m3rciful/mealbot/core/logger"
	tg "github.com/m3rciful/mealbot/core/telegram"
	"github.com/m3rciful/mealbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/mealbot/core/telegram/helpers"
	"github.com/m3rciful/mealbot/core/telegram/keyboard"
	"github.com/m3rciful/mealbot/core/telegram/middleware"
	"github.com/m3rciful/mealbot/core/telegram/state"
)

// StartCommand is the command that begins a recipe search.
const StartCommand = "/category_search_random"

// BindingOptions tunes the Telegram binding.
type BindingOptions struct {
	// OptionsPerRow lays out category buttons; <= 0 selects 2.
	OptionsPerRow int
	// SendErrors reports failed outbound sends for /stats.
	SendErrors func() uint64
}

// Binding adapts Flow to telebot handlers.
type Binding struct {
	flow   *Flow
	mgr    state.Manager
	reg    *tg.Registry
	perRow int
	errs   func() uint64
}

// Register adds the recipe commands to reg and binds the conversation states
// to mgr.
func Register(reg *tg.Registry, mgr state.Manager, flow *Flow, opts BindingOptions) *Binding {
	b := &Binding{flow: flow, mgr: mgr, reg: reg, perRow: opts.OptionsPerRow, errs: opts.SendErrors}
	if b.perRow <= 0 {
		b.perRow = 2
	}

	reg.RegisterCommand(StartCommand, commands.Command{
		Handler:     b.handleStart,
		Description: "случайные рецепты из выбранной категории",
		Usage:       StartCommand + " <count>",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "отменить текущий поиск",
	})
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleHelp,
		Description: "о боте",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "список команд",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "статистика работы бота",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(b.handleHelp)

	mgr.Handle(StateAwaitingCategory, b.handleCategory)
	mgr.Handle(StateAwaitingRecipeRequest, middleware.ExactText(flow.Texts().FetchButton)(b.handleFetch))
	return b
}

func (b *Binding) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := b.flow.Start(ctx, c.Sender().ID, c.Message().Payload)
	b.tagConversation(c)
	return b.deliver(c, replies, err)
}

func (b *Binding) handleCategory(c tele.Context) error {
	ctx := b.tagConversation(c)
	replies, err := b.flow.ChooseCategory(ctx, c.Sender().ID, c.Text())
	return b.deliver(c, replies, err)
}

func (b *Binding) handleFetch(c tele.Context) error {
	ctx := b.tagConversation(c)
	replies, err := b.flow.FetchDetails(ctx, c.Sender().ID)
	return b.deliver(c, replies, err)
}

func (b *Binding) handleCancel(c tele.Context) error {
	ctx := b.tagConversation(c)
	return b.deliver(c, b.flow.Cancel(ctx, c.Sender().ID), nil)
}

func (b *Binding) handleHelp(c tele.Context) error {
	text := b.flow.Texts().Welcome + "\n\n" + strings.Join(b.reg.HelpLines(), "\n")
	return tghelpers.SendText(c, text)
}

func (b *Binding) handleStats(c tele.Context) error {
	var sendErrs uint64
	if b.errs != nil {
		sendErrs = b.errs()
	}
	text := fmt.Sprintf("активных диалогов: %d\nошибок отправки: %d\nверсия: %s", b.mgr.Len(), sendErrs, buildinfo.String())
	return tghelpers.SendText(c, text)
}

// tagConversation adds the sender's conversation id to the logging context.
func (b *Binding) tagConversation(c tele.Context) context.Context {
	if c.Sender() == nil {
		return tghelpers.BuildContext(c)
	}
	return tghelpers.WithConversation(c, b.mgr.Get(c.Sender().ID).ID)
}

// deliver sends replies in order and then returns flowErr so the router can
// log its code.
func (b *Binding) deliver(c tele.Context, replies []Reply, flowErr error) error {
	for _, r := range replies {
		if err := b.send(c, r); err != nil {
			logger.Warn(tghelpers.BuildContext(c), "recipes", "reply.send",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			return err
		}
	}
	return flowErr
}

func (b *Binding) send(c tele.Context, r Reply) error {
	var markup *tele.ReplyMarkup
	switch {
	case len(r.Options) > 0:
		markup = keyboard.OneTimeOptions(r.Options, b.perRow)
	case r.RemoveKeyboard:
		markup = keyboard.RemoveKeyboard()
	}
	if r.HTML {
		return tghelpers.SendHTML(c, r.Text, markup)
	}
	if markup == nil {
		return tghelpers.SendText(c, r.Text)
	}
	return tghelpers.SendMarkup(c, r.Text, markup)
}
