/*
bot.go - Telegram frontend for the time clock

PURPOSE:
  Lets staff punch from their phones. Commands map one-to-one onto the
  tracker operations the HTTP API exposes; a punch that needs
  confirmation is presented as an inline keyboard whose callback
  records the answer. The employee then resubmits the punch, exactly
  as the two-step protocol requires; the bot never resubmits for them.

COMMANDS:
  /start         Usage help
  /link <id>     Bind this chat to an account id
  /in            Punch in now
  /out           Punch out now
  /break         Toggle the break
  /today         Live clock view
  /week          Current week report

CALLBACKS:
  confirm|<date>|yes   Authorize the out-of-shift time
  confirm|<date>|no    Record it as not worked

SEE ALSO:
  - timesheet/clock.go: The operations behind every command
  - cmd/server/main.go: Bot startup
*/
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
)

// Handler wires bot updates to the tracker.
type Handler struct {
	Bot     *telebot.Bot
	Tracker *timesheet.Tracker
	Store   timesheet.TxStore
	Log     *zap.Logger
}

// NewHandler creates the bot handler.
func NewHandler(bot *telebot.Bot, tracker *timesheet.Tracker, store timesheet.TxStore, log *zap.Logger) *Handler {
	return &Handler{Bot: bot, Tracker: tracker, Store: store, Log: log}
}

// Register installs every command and the callback router.
func (h *Handler) Register() {
	h.Bot.Handle("/start", h.handleStart)
	h.Bot.Handle("/link", h.handleLink)
	h.Bot.Handle("/in", h.handleIn)
	h.Bot.Handle("/out", h.handleOut)
	h.Bot.Handle("/break", h.handleBreak)
	h.Bot.Handle("/today", h.handleToday)
	h.Bot.Handle("/week", h.handleWeek)

	h.Bot.Handle(telebot.OnCallback, func(c telebot.Context) error {
		raw := strings.TrimPrefix(c.Data(), "\f")
		_ = c.Respond()
		parts := strings.Split(raw, "|")
		if len(parts) == 3 && parts[0] == "confirm" {
			return h.handleConfirm(c, parts[1], parts[2] == "yes")
		}
		return nil
	})
}

// Start runs the long-poller; it blocks until Stop.
func (h *Handler) Start() { h.Bot.Start() }

// Stop shuts the poller down.
func (h *Handler) Stop() { h.Bot.Stop() }

// =============================================================================
// COMMANDS
// =============================================================================

func (h *Handler) handleStart(c telebot.Context) error {
	return c.Send("Time clock bot.\n\n" +
		"/link <user-id> - connect your account\n" +
		"/in - punch in\n" +
		"/out - punch out\n" +
		"/break - start or stop your break\n" +
		"/today - today's clock\n" +
		"/week - current week report")
}

func (h *Handler) handleLink(c telebot.Context) error {
	arg := strings.TrimSpace(c.Message().Payload)
	if arg == "" {
		return c.Send("Usage: /link <user-id>")
	}
	err := h.Store.SaveChatLink(context.Background(), timesheet.ChatLink{
		ChatID: c.Chat().ID,
		UserID: timesheet.UserID(arg),
	})
	if err != nil {
		h.Log.Error("linking chat", zap.Int64("chat", c.Chat().ID), zap.Error(err))
		return c.Send("Could not link this chat, try again.")
	}
	return c.Send("Linked. You can punch with /in and /out now.")
}

func (h *Handler) handleIn(c telebot.Context) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	res, err := h.Tracker.ClockIn(context.Background(), user)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	return h.sendPunchResult(c, res, "Clocked in at %s.")
}

func (h *Handler) handleOut(c telebot.Context) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	res, err := h.Tracker.ClockOut(context.Background(), user)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	return h.sendPunchResult(c, res, "Clocked out at %s.")
}

func (h *Handler) handleBreak(c telebot.Context) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	res, err := h.Tracker.ToggleBreak(context.Background(), user)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	if res.Running {
		return c.Send("Break started.")
	}
	return c.Send(fmt.Sprintf("Break stopped. %d min recorded today.", res.BreakMinutes))
}

func (h *Handler) handleToday(c telebot.Context) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	view, err := h.Tracker.TodayState(context.Background(), user)
	if err != nil {
		return h.sendDomainError(c, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", view.Date)
	if view.InTime == "" {
		b.WriteString("Not clocked in.")
		return c.Send(b.String())
	}
	fmt.Fprintf(&b, "In: %s\n", view.InTime)
	if view.OutTime != "" {
		fmt.Fprintf(&b, "Out: %s\n", view.OutTime)
	}
	fmt.Fprintf(&b, "Break: %d min", view.BreakMinutes)
	if view.BreakRunning {
		b.WriteString(" (running)")
	}
	return c.Send(b.String())
}

func (h *Handler) handleWeek(c telebot.Context) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	report, err := h.Tracker.CurrentWeekReport(context.Background(), user)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	if report == nil {
		return c.Send("No week on file yet. Create one in the app first.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Week %d (%s - %s)\n",
		report.Week.WeekNumber, report.Week.StartDate, report.Week.EndDate())
	for _, d := range report.Days {
		if d.Entry.TimeIn == "" && d.Entry.TimeOut == "" {
			continue
		}
		fmt.Fprintf(&b, "%s  %s-%s  paid %s\n",
			d.Entry.Date, orDash(d.Entry.TimeIn), orDash(d.Entry.TimeOut),
			engine.ToHHMM(d.Breakdown.Minutes))
	}
	fmt.Fprintf(&b, "Total %s, %s", engine.ToHHMM(report.TotalMinutes), report.TotalPay.StringFixed(2))
	return c.Send(b.String())
}

// =============================================================================
// CONFIRMATION FLOW
// =============================================================================

// sendPunchResult renders a punch outcome. A pending result gets the
// confirm keyboard; the employee answers and punches again.
func (h *Handler) sendPunchResult(c telebot.Context, res *timesheet.PunchResult, committedFmt string) error {
	switch res.Outcome {
	case timesheet.OutcomeCommitted:
		return c.Send(fmt.Sprintf(committedFmt, res.Stored))
	case timesheet.OutcomeIgnored:
		return c.Send("Today is recorded as not worked; the punch was ignored.")
	case timesheet.OutcomePending:
		return c.Send(pendingQuestion(res.Pending), confirmKeyboard(res.Pending.Date))
	default:
		return c.Send("Nothing recorded.")
	}
}

func pendingQuestion(p *timesheet.PendingConfirm) string {
	switch p.Reason {
	case timesheet.ReasonDayOff:
		return fmt.Sprintf("You are rostered off on %s. Work this day anyway?", p.Date)
	case timesheet.ReasonEarlyIn:
		return fmt.Sprintf("You clocked in at %s, before your %s start. Count the extra time as overtime?", p.Real, p.Official)
	case timesheet.ReasonLateOut:
		return fmt.Sprintf("You clocked out at %s, after your %s end. Count the extra time as overtime?", p.Real, p.Official)
	default:
		return "Confirm the out-of-shift time?"
	}
}

func confirmKeyboard(date timesheet.Date) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	yes := markup.Data("Approve as overtime", "confirm", string(date)+"|yes")
	no := markup.Data("Not worked", "confirm", string(date)+"|no")
	markup.Inline(markup.Row(yes, no))
	return markup
}

func (h *Handler) handleConfirm(c telebot.Context, rawDate string, authorized bool) error {
	user, err := h.userFor(c)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	date, err := timesheet.ParseDate(rawDate)
	if err != nil {
		return c.Send("That confirmation has expired.")
	}

	applied, err := h.Tracker.ConfirmExtra(context.Background(), user, date, authorized)
	if err != nil {
		return h.sendDomainError(c, err)
	}
	if !applied {
		msg := "That answer is already on file. Punch again to store the time."
		if err := c.Edit(msg); err != nil {
			return c.Send(msg)
		}
		return nil
	}

	var msg string
	if authorized {
		msg = "Recorded as authorized. Punch again to store the time."
	} else {
		msg = "Recorded as not worked. Punch again to store your shift time."
	}
	if err := c.Edit(msg); err != nil {
		return c.Send(msg)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) userFor(c telebot.Context) (timesheet.UserID, error) {
	return h.Store.UserForChat(context.Background(), c.Chat().ID)
}

func (h *Handler) sendDomainError(c telebot.Context, err error) error {
	switch {
	case errors.Is(err, timesheet.ErrChatNotLinked):
		return c.Send("This chat is not linked. Use /link <user-id> first.")
	case errors.Is(err, timesheet.ErrNoActiveWeek):
		return c.Send("No active week. Create one before punching.")
	default:
		h.Log.Error("bot command failed", zap.Int64("chat", c.Chat().ID), zap.Error(err))
		return c.Send("Something went wrong, try again.")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
