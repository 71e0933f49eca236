/*
bot_test.go - Command handlers over a fake chat context

The fake context captures outgoing messages; the tracker runs over the
in-memory store with a pinned clock, exactly as the timesheet tests do.
*/
package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
	"github.com/shiftwise/timeclock/timesheet/store"
)

const (
	testUser timesheet.UserID = "u-1"
	testChat int64            = 42
)

// fakeContext implements just enough of telebot.Context for the
// command handlers: the chat identity and a capture of sent text.
type fakeContext struct {
	telebot.Context
	chat *telebot.Chat
	sent []string
}

func (f *fakeContext) Chat() *telebot.Chat { return f.chat }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func newBotFixture(t *testing.T) (*Handler, *store.Memory) {
	t.Helper()

	now, err := time.ParseInLocation("2006-01-02 15:04", "2025-06-02 09:45", time.Local)
	require.NoError(t, err)

	mem := store.NewMemory()
	tracker := timesheet.NewTracker(mem, engine.DefaultPolicy(), zap.NewNop(),
		timesheet.WithClock(func() time.Time { return now }))
	return &Handler{Tracker: tracker, Store: mem, Log: zap.NewNop()}, mem
}

func linkedContext(t *testing.T, mem *store.Memory) *fakeContext {
	t.Helper()
	err := mem.SaveChatLink(context.Background(), timesheet.ChatLink{
		ChatID: testChat,
		UserID: testUser,
	})
	require.NoError(t, err)
	return &fakeContext{chat: &telebot.Chat{ID: testChat}}
}

func TestHandleWeek_UnlinkedChatGetsLinkPrompt(t *testing.T) {
	h, _ := newBotFixture(t)
	c := &fakeContext{chat: &telebot.Chat{ID: testChat}}

	require.NoError(t, h.handleWeek(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "/link")
}

func TestHandleWeek_NoWeeksOnFile(t *testing.T) {
	// GIVEN: a linked chat whose account has no weeks yet
	// WHEN:  /week is requested
	// THEN:  the bot answers gracefully instead of failing

	h, mem := newBotFixture(t)
	c := linkedContext(t, mem)

	require.NoError(t, h.handleWeek(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "No week on file")
}

func TestHandleWeek_RendersCurrentReport(t *testing.T) {
	h, mem := newBotFixture(t)
	c := linkedContext(t, mem)
	ctx := context.Background()

	week, err := h.Tracker.CreateWeek(ctx, testUser, 23, timesheet.Date("2025-06-01"), decimal.NewFromFloat(12.70))
	require.NoError(t, err)
	_, err = h.Tracker.UpsertEntry(ctx, testUser, timesheet.EntryEdit{
		WeekID:       week.ID,
		Date:         timesheet.Date("2025-06-02"),
		TimeIn:       "09:45",
		TimeOut:      "19:00",
		BreakMinutes: 60,
	})
	require.NoError(t, err)

	require.NoError(t, h.handleWeek(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Week 23")
	assert.Contains(t, c.sent[0], "09:45-19:00")
	assert.Contains(t, c.sent[0], "Total 08:15, 104.78")
}
