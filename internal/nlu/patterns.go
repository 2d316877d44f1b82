package nlu

import "github.com/spec-kit/dialog-engine/internal/domain"

// Pattern is one registered intent matcher: keyword/phrase matching with
// optional negation and context boost. Patterns are evaluated in
// registration order within their priority group.
type Pattern struct {
	Intent   string
	Keywords []string
	// Negators zero the score when present in the utterance.
	Negators []string
	// Boosts add to the score when present in recent history.
	Boosts []string
}

// defaultRegistry returns the built-in intent taxonomy, one ordered pattern
// list per priority group. The registry is static; classification is a pure
// function of it.
func defaultRegistry() map[domain.PriorityGroup][]Pattern {
	return map[domain.PriorityGroup][]Pattern{
		domain.GroupSecurity: {
			{Intent: "abuse", Keywords: []string{
				"мошенни", "обман", "кидал", "развод", "скам", "хакер", "взлом", "вирус",
			}},
			{Intent: "aggression", Keywords: []string{
				"сука", "блять", "пидор", "хуй", "ублюдок", "мудак", "гнида",
				"сволочь", "уебок", "убью", "убить", "угрож",
			}},
			{Intent: "fraud_signals", Keywords: []string{
				"дай пароль", "назови пароль", "данные клиента", "дай телефон",
				"телефон клиента", "покажи заказ", "заказ другого",
			}},
		},
		domain.GroupPrivacy: {
			{Intent: "privacy_request", Keywords: []string{
				"удалить данные", "удалите мои данные", "забыть меня",
				"право на забвение", "gdpr", "персональные данные", "запрос данных",
			}},
			{Intent: "delete_data", Keywords: []string{
				"удалить", "удалите", "стереть", "очистить историю", "забыть",
			}},
			{Intent: "get_data_copy", Keywords: []string{
				"выгрузить данные", "копия данных", "экспорт данных",
				"что вы знаете обо мне", "какие данные храните",
			}},
		},
		domain.GroupComplaints: {
			{Intent: "refund_request", Keywords: []string{
				"возврат", "вернуть", "вернуть деньги", "верните деньги",
				"отменить заказ", "отказ от заказа",
			}},
			{Intent: "complaint_quality", Keywords: []string{
				"плохое качество", "не работает", "сломалось", "дефект", "брак",
				"некачественно", "не то что обещали",
			}},
			{Intent: "complaint_service", Keywords: []string{
				"плохой сервис", "не довольн", "жалоба", "претензия", "обманули",
				"не выполнили", "задержка",
			}},
		},
		domain.GroupTransactions: {
			{Intent: "buy", Keywords: []string{
				"купить", "заказать", "оформить", "хочу заказать", "готов заказать", "оформляем",
			}, Boosts: []string{"цена", "стоимость", "услуг"}},
			{Intent: "payment", Keywords: []string{
				"оплата", "оплатить", "как оплатить", "способ оплаты", "где платить", "счет",
			}},
			{Intent: "invoice", Keywords: []string{
				"счёт", "выставить счёт", "нужен счёт", "инвойс", "реквизиты",
			}},
			{Intent: "appointment_booking", Keywords: []string{
				"записаться", "запись", "назначить встречу", "консультация", "созвониться",
			}},
		},
		domain.GroupPresales: {
			{Intent: "services_browse", Keywords: []string{
				"услуги", "что делаете", "чем занимаетесь", "направления", "сервисы", "предлагаете",
			}},
			{Intent: "pricing_request", Keywords: []string{
				"цена", "стоимость", "сколько стоит", "расценки", "прайс", "тариф", "бюджет",
			}},
			{Intent: "timing_request", Keywords: []string{
				"срок", "как долго", "когда", "время выполнения", "длительность", "как быстро",
			}},
			{Intent: "comparison", Keywords: []string{
				"сравнить", "разница", "отличие", "что лучше", "чем отличаетесь", "конкуренты",
			}},
			{Intent: "objections", Keywords: []string{
				"дорого", "долго", "не уверен", "подумать", "сомневаюсь", "не убедили",
			}},
		},
		domain.GroupSupport: {
			{Intent: "how_to", Keywords: []string{
				"инструкция", "не понятно", "не получается", "помогите", "подскажите",
			}},
			{Intent: "status", Keywords: []string{
				"статус", "где заказ", "отследить", "трек номер", "проверить заказ",
			}},
			{Intent: "change_order", Keywords: []string{
				"изменить", "поменять", "добавить", "убрать", "изменить заказ",
			}},
			{Intent: "cancel_order", Keywords: []string{
				"отменить", "не нужен", "отмена заказа",
			}, Negators: []string{"возврат", "деньги"}},
		},
		domain.GroupNavigation: {
			{Intent: "greet", Keywords: []string{
				"привет", "здравствуй", "добрый день", "доброе утро", "добрый вечер", "hi", "hello",
			}},
			{Intent: "menu", Keywords: []string{
				"меню", "главная", "разделы", "что умеешь",
			}},
			{Intent: "help", Keywords: []string{
				"помощь", "справка", "что делать", "не понимаю",
			}},
			{Intent: "human_handoff", Keywords: []string{
				"менеджер", "оператор", "человек", "специалист", "живой", "хочу с человеком",
			}},
		},
	}
}

// handoffReasons maps escalating intents to operator-facing explanations.
var handoffReasons = map[string]string{
	"abuse":             "Попытка обмана или злоупотребления",
	"aggression":        "Агрессивное поведение клиента",
	"fraud_signals":     "Подозрение на фишинг/мошенничество",
	"privacy_request":   "Запрос по персональным данным",
	"delete_data":       "Запрос на удаление данных (GDPR/152-ФЗ)",
	"get_data_copy":     "Запрос на выгрузку данных (GDPR)",
	"refund_request":    "Запрос на возврат средств",
	"complaint_quality": "Жалоба на качество",
	"complaint_service": "Жалоба на сервис",
	"human_handoff":     "Пользователь явно запросил менеджера",
	"legal":             "Юридический вопрос требует специалиста",
}

// HandoffReason returns the operator-facing reason for escalating an intent.
func HandoffReason(intent domain.Intent) string {
	if reason, ok := handoffReasons[intent.Name]; ok {
		return reason
	}
	return "Требуется участие специалиста"
}
