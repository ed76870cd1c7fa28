package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"rillshop/internal/llm"
	"rillshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completion struct {
	messages []models.ChatMessage
	params   llm.Params
}

// fakeCompleter answers with replies in order.
type fakeCompleter struct {
	replies []string
	errs    []error
	calls   []completion
}

func (f *fakeCompleter) Complete(_ context.Context, messages []models.ChatMessage, params llm.Params) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, completion{messages: messages, params: params})

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("unexpected call")
}

type fakeRecorder struct {
	entries [][]models.ChatHistoryEntry
}

func (f *fakeRecorder) Record(_ context.Context, entries []models.ChatHistoryEntry) {
	f.entries = append(f.entries, entries)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func history(n int) []models.ChatMessage {
	h := make([]models.ChatMessage, n)
	for i := range h {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		h[i] = models.ChatMessage{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return h
}

func TestSiteManager_Canned(t *testing.T) {
	sm := NewSiteManager(discard(), nil)

	tests := []struct {
		name    string
		request string
		actions []string
	}{
		{"color", "Поменяй ЦВЕТ кнопок", []string{"Изменил цветовую схему сайта", "Обновил все кнопки и элементы"}},
		{"add section", "Добавь раздел с отзывами", []string{"Создал новый раздел", "Добавил заголовок и контент", "Настроил навигацию"}},
		{"add section via секц", "добавить секцию FAQ", []string{"Создал новый раздел", "Добавил заголовок и контент", "Настроил навигацию"}},
		{"add without section falls through", "добавь баннер", []string{"Проанализировал запрос", "Внес изменения в сайт"}},
		{"remove", "Удали футер", []string{"Удалил указанные элементы", "Обновил структуру страницы"}},
		{"products", "настрой продукты", []string{"Настроил категории товаров", "Обновил карточки продуктов"}},
		{"color wins over remove", "убери красный цвет", []string{"Изменил цветовую схему сайта", "Обновил все кнопки и элементы"}},
		{"fallback", "сделай красиво", []string{"Проанализировал запрос", "Внес изменения в сайт"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := sm.Reply(context.Background(), tt.request, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.actions, reply.Actions)
			assert.NotEmpty(t, reply.Response)
		})
	}
}

func TestSiteManager_CannedActionsAreCopies(t *testing.T) {
	sm := NewSiteManager(discard(), nil)

	reply, err := sm.Reply(context.Background(), "цвет", nil)
	require.NoError(t, err)
	reply.Actions[0] = "mutated"

	again, err := sm.Reply(context.Background(), "цвет", nil)
	require.NoError(t, err)
	assert.Equal(t, "Изменил цветовую схему сайта", again.Actions[0])
}

func TestSiteManager_AI(t *testing.T) {
	fc := &fakeCompleter{replies: []string{
		"Сменил тему на тёмную.",
		`["Включил тёмную тему", "Обновил стили кнопок"]`,
	}}
	sm := NewSiteManager(discard(), fc)

	reply, err := sm.Reply(context.Background(), "Сделай тёмную тему", history(14))
	require.NoError(t, err)

	assert.Equal(t, "Сменил тему на тёмную.", reply.Response)
	assert.Equal(t, []string{"Включил тёмную тему", "Обновил стили кнопок"}, reply.Actions)

	require.Len(t, fc.calls, 2)

	first := fc.calls[0]
	require.Len(t, first.messages, 12)
	assert.Equal(t, "system", first.messages[0].Role)
	assert.Equal(t, siteManagerSystemPrompt, first.messages[0].Content)
	assert.Equal(t, "turn 4", first.messages[1].Content)
	assert.Equal(t, models.ChatMessage{Role: "user", Content: "Сделай тёмную тему"}, first.messages[11])
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxTokens: 600}, first.params)

	second := fc.calls[1]
	require.Len(t, second.messages, 1)
	assert.Contains(t, second.messages[0].Content, "Запрос: Сделай тёмную тему")
	assert.Contains(t, second.messages[0].Content, "Ответ AI: Сменил тему на тёмную.")
	assert.Equal(t, llm.Params{Temperature: 0.5, MaxTokens: 200}, second.params)
}

func TestSiteManager_AIActionsFallback(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"Готово.", "Я сделал две вещи"}}

	reply, err := NewSiteManager(discard(), fc).Reply(context.Background(), "что-нибудь", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Обработал запрос", "Внес изменения на сайт"}, reply.Actions)
}

func TestSiteManager_AIError(t *testing.T) {
	fc := &fakeCompleter{errs: []error{errors.New("rate limit exceeded")}}

	_, err := NewSiteManager(discard(), fc).Reply(context.Background(), "что-нибудь", nil)
	assert.ErrorContains(t, err, "rate limit exceeded")
}

func TestSiteManager_AISecondCallError(t *testing.T) {
	fc := &fakeCompleter{
		replies: []string{"Готово."},
		errs:    []error{nil, errors.New("timeout")},
	}

	_, err := NewSiteManager(discard(), fc).Reply(context.Background(), "что-нибудь", nil)
	assert.ErrorContains(t, err, "timeout")
}

func TestParseActions(t *testing.T) {
	got, err := parseActions("```json\n[\"a\", \"b\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = parseActions("[]")
	assert.Error(t, err)

	_, err = parseActions(`{"actions": ["a"]}`)
	assert.Error(t, err)
}

func TestSupport_Canned(t *testing.T) {
	s := NewSupport(discard(), nil, nil)

	tests := []struct {
		name     string
		userName string
		message  string
		want     string
	}{
		{"delivery", "Анна", "Сколько идёт доставка?", "Доставка осуществляется в течение 1-3 рабочих дней. Бесплатная доставка от 1000₽."},
		{"payment", "Анна", "Как ОПЛАТИТЬ?", "Мы принимаем: банковские карты, СБП и PayPal. Все платежи защищены."},
		{"return", "", "хочу возврат", "Вы можете вернуть товар в течение 14 дней с момента покупки. Обратитесь в поддержку с номером заказа."},
		{"fallback", "", "как дела?", "Извините, я не могу ответить на этот вопрос. Обратитесь к администратору."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Reply(context.Background(), tt.userName, tt.message, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupport_CannedCheckoutGreetsByName(t *testing.T) {
	s := NewSupport(discard(), nil, nil)

	got, err := s.Reply(context.Background(), "Анна", "Как оформить заказ и оплатить?", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "Привет, Анна! Для оформления заказа:")

	got, err = s.Reply(context.Background(), "", "как оформить заказ", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "Привет, Пользователь!")
}

func TestSupport_AIRecordsTurn(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"Доставка занимает 1-3 дня."}}
	rec := &fakeRecorder{}
	s := NewSupport(discard(), fc, rec)

	got, err := s.Reply(context.Background(), "Анна", "Когда доставка?", history(3))
	require.NoError(t, err)
	assert.Equal(t, "Доставка занимает 1-3 дня.", got)

	require.Len(t, fc.calls, 1)
	msgs := fc.calls[0].messages
	require.Len(t, msgs, 5)
	assert.Equal(t, supportSystemPrompt, msgs[0].Content)
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxTokens: 500}, fc.calls[0].params)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, []models.ChatHistoryEntry{
		{UserEmail: "Анна", ChatType: "support", Message: "Когда доставка?", Role: "user"},
		{UserEmail: "Анна", ChatType: "support", Message: "Доставка занимает 1-3 дня.", Role: "assistant"},
	}, rec.entries[0])
}

func TestSupport_AIErrorRecordsNothing(t *testing.T) {
	fc := &fakeCompleter{errs: []error{errors.New("boom")}}
	rec := &fakeRecorder{}

	_, err := NewSupport(discard(), fc, rec).Reply(context.Background(), "Анна", "привет", nil)
	assert.ErrorContains(t, err, "boom")
	assert.Empty(t, rec.entries)
}

func TestSupport_AIWithoutRecorder(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"ok"}}

	got, err := NewSupport(discard(), fc, nil).Reply(context.Background(), "", "привет", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
