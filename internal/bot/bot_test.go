package bot

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"tintas-bot/internal/bot/state_manager"
	"tintas-bot/internal/config"
	"tintas-bot/internal/storage"
	"tintas-bot/internal/storage/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const (
	userChat    = int64(42)
	adminChat   = int64(7)
	channelChat = int64(-100)
)

type fakeAPI struct {
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopped = true
}

// texts returns the text messages sent to chatID, in order.
func (f *fakeAPI) texts(chatID int64) []string {
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText(chatID int64) string {
	texts := f.texts(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// memoryStates round-trips states through JSON like the Redis storage does.
type memoryStates struct {
	data map[int64][]byte
}

func (m *memoryStates) GetUserDialogState(_ context.Context, chatID int64) (*redis.UserState, error) {
	state := &redis.UserState{}
	if raw, ok := m.data[chatID]; ok {
		if err := json.Unmarshal(raw, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (m *memoryStates) SetUserDialogState(_ context.Context, chatID int64, state *redis.UserState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.data[chatID] = raw
	return nil
}

func (m *memoryStates) DropUserDialogState(_ context.Context, chatID int64) error {
	delete(m.data, chatID)
	return nil
}

type fakeStorage struct {
	consents      []storage.Consent
	storedConsent bool
	saved         []storage.Calculation
	stats         *storage.CalculationStatistics
	exportDir     string
	exceeded      bool
	limitErr      error
	deletedRefs   []string
	deleteErr     error
}

func (f *fakeStorage) SaveCalculation(_ context.Context, calc storage.Calculation) (string, error) {
	f.saved = append(f.saved, calc)
	return "id", nil
}

func (f *fakeStorage) RecordConsent(_ context.Context, consent storage.Consent) error {
	f.consents = append(f.consents, consent)
	return nil
}

func (f *fakeStorage) GetConsentStatus(context.Context, string, string) (bool, error) {
	return f.storedConsent, nil
}

func (f *fakeStorage) GetCalculationStatistics(context.Context) (*storage.CalculationStatistics, error) {
	if f.stats == nil {
		return nil, errors.New("no stats")
	}
	return f.stats, nil
}

func (f *fakeStorage) ExportCalculationsToExcel(_ context.Context, dir, name string, _ time.Time) (string, error) {
	f.exportDir = dir
	return filepath.Join(dir, name+".xlsx"), nil
}

func (f *fakeStorage) CheckRateLimit(context.Context, string, string, int64, time.Duration) (bool, error) {
	return f.exceeded, f.limitErr
}

func (f *fakeStorage) DeleteUserData(_ context.Context, userRef string) (storage.UserDataDeletion, error) {
	if f.deleteErr != nil {
		return storage.UserDataDeletion{}, f.deleteErr
	}
	f.deletedRefs = append(f.deletedRefs, userRef)
	return storage.UserDataDeletion{Calculations: int64(len(f.saved)), Consents: int64(len(f.consents))}, nil
}

type harness struct {
	bot     *Bot
	api     *fakeAPI
	states  *state_manager.UserDialogStateManager
	storage *fakeStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		Telegram: config.TelegramConfig{RateLimit: 10, RateWindow: time.Hour},
		Admin:    config.AdminConfig{IDs: []int64{adminChat}, ChannelID: channelChat},
		Pricing: config.PricingConfig{
			DefaultCoverage: 12,
			DefaultCoats:    2,
			DefaultWaste:    0.10,
			PackageSizes:    []float64{0.9, 3.6, 18},
		},
		ReportsDir: t.TempDir(),
	}

	h := &harness{
		api:     &fakeAPI{updates: make(chan tgbotapi.Update, 1)},
		states:  state_manager.New(&memoryStates{data: map[int64][]byte{}}),
		storage: &fakeStorage{},
	}
	h.bot = New(h.api, h.states, h.storage, zap.NewNop(), cfg)
	return h
}

func (h *harness) send(chatID int64, text string) {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{UserName: "ana"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	h.bot.processMessage(context.Background(), msg)
}

func (h *harness) state(t *testing.T, chatID int64) *redis.UserState {
	t.Helper()
	state, err := h.states.GetUserDialogState(context.Background(), chatID)
	require.NoError(t, err)
	return state
}

func (h *harness) consent(t *testing.T) {
	t.Helper()
	h.send(userChat, "/start")
	h.send(userChat, btnAccept)
	require.Equal(t, StepMainMenu, h.state(t, userChat).Step)
}

func TestStart_AsksForConsent(t *testing.T) {
	h := newHarness(t)

	h.send(userChat, "/start")

	assert.Equal(t, consentText, h.api.lastText(userChat))
	state := h.state(t, userChat)
	assert.Equal(t, StepConsent, state.Step)
	require.NotNil(t, state.Userdata)
	assert.Equal(t, "ana", state.Userdata.Username)
	assert.False(t, state.Userdata.ConsentGranted)
}

func TestConsent_Accept(t *testing.T) {
	h := newHarness(t)

	h.consent(t)

	require.Len(t, h.storage.consents, 1)
	consent := h.storage.consents[0]
	assert.True(t, consent.Granted)
	assert.Equal(t, "tg:42", consent.UserRef)
	assert.Equal(t, consentTypeLGPD, consent.ConsentType)
	assert.Contains(t, string(consent.Metadata), `"username":"ana"`)

	assert.Contains(t, h.api.lastText(channelChat), "@ana")
	assert.True(t, h.state(t, userChat).Userdata.ConsentGranted)
}

func TestConsent_Decline(t *testing.T) {
	h := newHarness(t)

	h.send(userChat, "/start")
	h.send(userChat, btnDecline)

	require.Len(t, h.storage.consents, 1)
	assert.False(t, h.storage.consents[0].Granted)
	assert.Equal(t, StepConsent, h.state(t, userChat).Step)
	assert.Empty(t, h.api.texts(channelChat))
}

func TestConsent_FreeTextRejected(t *testing.T) {
	h := newHarness(t)

	h.send(userChat, "/start")
	h.send(userChat, "talvez")

	assert.Empty(t, h.storage.consents)
	assert.True(t, strings.HasPrefix(h.api.lastText(userChat), "❌"))
}

func TestStart_StoredConsentSkipsPrompt(t *testing.T) {
	h := newHarness(t)
	h.storage.storedConsent = true

	h.send(userChat, "/start")

	assert.NotContains(t, h.api.texts(userChat), consentText)
	assert.Equal(t, StepMainMenu, h.state(t, userChat).Step)
}

func TestPaintFlow(t *testing.T) {
	h := newHarness(t)
	h.consent(t)

	h.send(userChat, btnPaint)
	assert.Equal(t, StepPaintDimensions, h.state(t, userChat).Step)

	h.send(userChat, "4,5 2,8 4")
	assert.Equal(t, StepPaintOpenings, h.state(t, userChat).Step)

	h.send(userChat, "2")
	assert.Equal(t, StepPaintCoats, h.state(t, userChat).Step)

	h.send(userChat, "2")

	texts := h.api.texts(userChat)
	require.GreaterOrEqual(t, len(texts), 2)
	result := texts[len(texts)-2]
	assert.Contains(t, result, "Área a pintar: 48,4 m²")
	assert.Contains(t, result, "Tinta necessária: 8,9 L (com 10% de margem)")
	assert.Contains(t, result, "2 × 3,6 L + 2 × 0,9 L")

	require.Len(t, h.storage.saved, 1)
	calc := h.storage.saved[0]
	assert.Equal(t, storage.KindPaint, calc.Kind)
	assert.Equal(t, storage.SourceTelegram, calc.Source)
	assert.Equal(t, 8.9, calc.Required)
	assert.Contains(t, string(calc.Params), `"coats":2`)

	state := h.state(t, userChat)
	assert.Equal(t, StepMainMenu, state.Step)
	assert.Nil(t, state.Paint)
	assert.True(t, state.Userdata.ConsentGranted)
}

func TestPaintFlow_NoOpenings(t *testing.T) {
	h := newHarness(t)
	h.consent(t)

	h.send(userChat, btnPaint)
	h.send(userChat, "5x2,4x1")
	h.send(userChat, btnNoOpenings)
	h.send(userChat, "1")

	require.Len(t, h.storage.saved, 1)
	// 12 m² / 12 m²/L × 1 coat × 1.1
	assert.Equal(t, 1.1, h.storage.saved[0].Required)
}

func TestPaintFlow_InvalidInputKeepsStep(t *testing.T) {
	h := newHarness(t)
	h.consent(t)
	h.send(userChat, btnPaint)

	h.send(userChat, "4,5 2,8")
	assert.Equal(t, StepPaintDimensions, h.state(t, userChat).Step)
	assert.True(t, strings.HasPrefix(h.api.lastText(userChat), "❌"))

	h.send(userChat, "4,5 2,8 4")
	h.send(userChat, "-1")
	assert.Equal(t, StepPaintOpenings, h.state(t, userChat).Step)

	h.send(userChat, "0")
	h.send(userChat, "5")
	assert.Equal(t, StepPaintCoats, h.state(t, userChat).Step)
	assert.Empty(t, h.storage.saved)
}

func TestPaintFlow_RateLimited(t *testing.T) {
	h := newHarness(t)
	h.consent(t)
	h.storage.exceeded = true

	h.send(userChat, btnPaint)
	h.send(userChat, "4 2,5 1")
	h.send(userChat, "0")
	h.send(userChat, "2")

	assert.Empty(t, h.storage.saved)
	assert.Contains(t, h.api.lastText(userChat), "limite")
	assert.Equal(t, StepMainMenu, h.state(t, userChat).Step)
}

func TestPaintFlow_LimiterErrorFailsOpen(t *testing.T) {
	h := newHarness(t)
	h.consent(t)
	h.storage.limitErr = errors.New("redis down")

	h.send(userChat, btnPaint)
	h.send(userChat, "4 2,5 1")
	h.send(userChat, "0")
	h.send(userChat, "2")

	assert.Len(t, h.storage.saved, 1)
}

func TestFloorFlow(t *testing.T) {
	h := newHarness(t)
	h.consent(t)

	h.send(userChat, btnFloor)
	assert.Equal(t, StepFloorType, h.state(t, userChat).Step)

	h.send(userChat, "granito")
	assert.Equal(t, StepFloorType, h.state(t, userChat).Step)

	h.send(userChat, "Porcelanato")
	assert.Equal(t, StepFloorDimensions, h.state(t, userChat).Step)

	h.send(userChat, "4 5")
	assert.Equal(t, StepFloorBox, h.state(t, userChat).Step)

	h.send(userChat, "2,2")

	texts := h.api.texts(userChat)
	result := texts[len(texts)-2]
	assert.Contains(t, result, "Caixas necessárias: 10 (com 8% de perda)")
	assert.Contains(t, result, "Rejunte: 10 kg")
	assert.Contains(t, result, "Argamassa: 30 kg")

	require.Len(t, h.storage.saved, 1)
	assert.Equal(t, storage.KindFloor, h.storage.saved[0].Kind)
	assert.Equal(t, "units", h.storage.saved[0].Unit)
}

func TestCancel_KeepsConsent(t *testing.T) {
	h := newHarness(t)
	h.consent(t)

	h.send(userChat, btnPaint)
	h.send(userChat, "4,5 2,8 4")
	h.send(userChat, btnCancel)

	state := h.state(t, userChat)
	assert.Equal(t, StepMainMenu, state.Step)
	assert.Nil(t, state.Paint)
	assert.True(t, state.Userdata.ConsentGranted)

	h.send(userChat, "/cancel")
	assert.Equal(t, StepMainMenu, h.state(t, userChat).Step)
}

func TestCancel_WithoutConsentClearsState(t *testing.T) {
	h := newHarness(t)

	h.send(userChat, "/start")
	h.send(userChat, "/cancel")

	assert.Equal(t, "", h.state(t, userChat).Step)
	assert.Contains(t, h.api.lastText(userChat), "/start")
}

func TestDeleteData(t *testing.T) {
	h := newHarness(t)
	h.consent(t)

	h.send(userChat, "/apagar")

	assert.Equal(t, []string{"tg:42"}, h.storage.deletedRefs)
	assert.Contains(t, h.api.lastText(userChat), "0 cálculos, 1 registros de consentimento")
	state := h.state(t, userChat)
	assert.Equal(t, "", state.Step)
	assert.Nil(t, state.Userdata)

	// consent has to be given again
	h.send(userChat, "/start")
	assert.Equal(t, consentText, h.api.lastText(userChat))
}

func TestDeleteData_StorageFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.consent(t)
	h.storage.deleteErr = errors.New("db down")

	h.send(userChat, "/forget")

	assert.True(t, strings.HasPrefix(h.api.lastText(userChat), "❌"))
	assert.True(t, h.state(t, userChat).Userdata.ConsentGranted)
}

func TestUnknownInput(t *testing.T) {
	h := newHarness(t)

	h.send(userChat, "olá")
	assert.Contains(t, h.api.lastText(userChat), "/start")

	h.send(userChat, "/nope")
	assert.Contains(t, h.api.lastText(userChat), "Comando desconhecido")
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)
	h.storage.stats = &storage.CalculationStatistics{
		TotalCalculations: 5,
		KindCounts:        map[string]int{storage.KindPaint: 3, storage.KindFloor: 2},
		TotalLiters:       26.7,
	}

	h.send(userChat, "/stats")
	assert.Contains(t, h.api.lastText(userChat), "Comando desconhecido")

	h.send(adminChat, "/stats")
	stats := h.api.lastText(adminChat)
	assert.Contains(t, stats, "Total: 5")
	assert.Contains(t, stats, "Tinta: 3")
	assert.Contains(t, stats, "Litros calculados: 26,7 L")

	h.send(adminChat, "/export 7")
	last := h.api.sent[len(h.api.sent)-1]
	doc, ok := last.(tgbotapi.DocumentConfig)
	require.True(t, ok, "expected a document, got %T", last)
	assert.Equal(t, adminChat, doc.ChatID)
	assert.Contains(t, doc.Caption, "7 dias")
	assert.Equal(t, h.bot.cfg.ReportsDir, h.storage.exportDir)

	h.send(adminChat, "/export abc")
	assert.Contains(t, h.api.lastText(adminChat), "/export")
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.bot.Start(ctx) }()

	h.api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: userChat},
		Text: "olá",
	}}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}
}
