// Package i18n holds the user-facing texts of the bot, keyed by language tag.
package i18n

// DefaultLanguage is used when a session has no language yet or the tag is unknown.
const DefaultLanguage = "ru"

// Texts is the full set of messages the dialogue sends in one language.
type Texts struct {
	Welcome          string
	LanguageSelected string
	AskBudget        string
	AskPeople        string
	AskDuration      string
	AskInterests     string
	Processing       string
	ResultIntro      string
	ResultOutro      string // appended directly after the formatted venues
	Error            string
	Cancel           string
	NoResults        string
}

// Option is one selectable language.
type Option struct {
	Tag   string
	Label string
}

var languages = map[string]Texts{
	"ru": {
		Welcome:          "Привет! Я помогу выбрать, куда сходить: концерт, музей, ресторан или прогулка.\n\nДля начала выберите язык:",
		LanguageSelected: "Отлично, общаемся на русском 🇷🇺",
		AskBudget:        "Какой у вас бюджет на одного человека? Например: «до 2000 рублей».",
		AskPeople:        "Сколько человек пойдёт?",
		AskDuration:      "Сколько времени вы готовы потратить? Например: «пару часов» или «весь вечер».",
		AskInterests:     "Расскажите, что вам интересно. Пишите свободно: «живая музыка», «современное искусство», «вкусно поесть»…",
		Processing:       "Подбираю варианты, это займёт несколько секунд… ⏳",
		ResultIntro:      "Вот что я нашёл для вас:",
		ResultOutro:      "\n\nХорошего отдыха! Чтобы подобрать что-нибудь ещё, отправьте /start.",
		Error:            "Что-то пошло не так при подборе мест 😔 Попробуйте ещё раз чуть позже: /start.",
		Cancel:           "Хорошо, отменяю. Чтобы начать заново, отправьте /start.",
		NoResults:        "К сожалению, я не нашел подходящих мест. Попробуйте описать свои интересы по-другому.",
	},
}

// options is the order in which languages are offered.
var options = []Option{
	{Tag: "ru", Label: "Русский 🇷🇺"},
}

// Lookup returns the texts for tag.
func Lookup(tag string) (Texts, bool) {
	t, ok := languages[tag]
	return t, ok
}

// For returns the texts for tag, or the default language when tag is unknown.
func For(tag string) Texts {
	if t, ok := languages[tag]; ok {
		return t
	}
	return languages[DefaultLanguage]
}

// Options lists the languages offered at the start of a dialogue.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// ComposeResult builds the final recommendation message around the
// model-formatted venue list.
func ComposeResult(t Texts, formatted string) string {
	return t.ResultIntro + "\n\n" + formatted + t.ResultOutro
}
