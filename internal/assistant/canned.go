package assistant

import (
	"fmt"
	"strings"
)

// cannedSiteReply is one row of the site-manager answer table used when no
// model is configured. match gets the lowercased request.
type cannedSiteReply struct {
	match    func(req string) bool
	response string
	actions  []string
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// Order matters: the first matching row wins.
var cannedSiteReplies = []cannedSiteReply{
	{
		match:    func(req string) bool { return strings.Contains(req, "цвет") },
		response: "Я изменил цвета сайта! Новая цветовая схема применена ко всем элементам. Проверьте результат.",
		actions:  []string{"Изменил цветовую схему сайта", "Обновил все кнопки и элементы"},
	},
	{
		match: func(req string) bool {
			return strings.Contains(req, "добав") && containsAny(req, "раздел", "секц")
		},
		response: "Отлично! Я добавил новый раздел на сайт. Вы можете найти его в навигации.",
		actions:  []string{"Создал новый раздел", "Добавил заголовок и контент", "Настроил навигацию"},
	},
	{
		match:    func(req string) bool { return containsAny(req, "убра", "удал") },
		response: "Готово! Я убрал ненужные элементы с сайта.",
		actions:  []string{"Удалил указанные элементы", "Обновил структуру страницы"},
	},
	{
		match:    func(req string) bool { return containsAny(req, "товар", "продукт") },
		response: "Я настроил раздел товаров согласно вашему запросу!",
		actions:  []string{"Настроил категории товаров", "Обновил карточки продуктов"},
	},
}

var cannedSiteFallback = cannedSiteReply{
	response: "Я обработал ваш запрос и внес соответствующие изменения на сайт!",
	actions:  []string{"Проанализировал запрос", "Внес изменения в сайт"},
}

func cannedSiteReplyFor(request string) cannedSiteReply {
	req := strings.ToLower(request)

	for _, r := range cannedSiteReplies {
		if r.match(req) {
			return r
		}
	}

	return cannedSiteFallback
}

type cannedSupportAnswer struct {
	keyword string
	answer  func(userName string) string
}

func fixed(s string) func(string) string {
	return func(string) string { return s }
}

// Checked in order against the lowercased message.
var cannedSupportAnswers = []cannedSupportAnswer{
	{
		keyword: "оформить заказ",
		answer: func(userName string) string {
			return fmt.Sprintf("Привет, %s! Для оформления заказа:\n"+
				"1. Добавьте товары в корзину\n"+
				"2. Нажмите на иконку корзины\n"+
				"3. Выберите способ оплаты\n"+
				"4. Нажмите \"Оплатить\"", userName)
		},
	},
	{keyword: "оплат", answer: fixed("Мы принимаем: банковские карты, СБП и PayPal. Все платежи защищены.")},
	{keyword: "возврат", answer: fixed("Вы можете вернуть товар в течение 14 дней с момента покупки. Обратитесь в поддержку с номером заказа.")},
	{keyword: "доставк", answer: fixed("Доставка осуществляется в течение 1-3 рабочих дней. Бесплатная доставка от 1000₽.")},
}

const cannedSupportFallback = "Извините, я не могу ответить на этот вопрос. Обратитесь к администратору."

func cannedSupportAnswerFor(userName, message string) string {
	msg := strings.ToLower(message)

	for _, a := range cannedSupportAnswers {
		if strings.Contains(msg, a.keyword) {
			return a.answer(userName)
		}
	}

	return cannedSupportFallback
}
