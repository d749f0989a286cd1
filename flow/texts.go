package flow

import "regexp"

// User-facing texts. The bot serves a Ukrainian-speaking complex, so the
// strings are fixed literals rather than a translation layer.
const (
	TextGreeting           = "Вітання! Це бот для відкривання дверей в Gloria Park. Поділіться вашим телефоном, щоб я міг дізнатись чи ви у списку користувачів"
	TextShareContactButton = "Відправити боту номер телефону"

	// Rejection and acceptance take the shared phone number verbatim.
	TextRejectedFormat = "Телефон +%s не у списку. Ви не можете користуватись ботом-консьєржем"
	TextAcceptedFormat = "Телефон +%s у списку. Для зручності користування, використайте віджет телеграму, в який можна додати на основний екран смартфону (втім це не обов'язково). Інструкції на скрінах"

	TextOpening        = "Відкриваю двері"
	TextOpened         = "Відкрито"
	TextTakingSnapshot = "Роблю фото"
	TextDeviceNotFound = "Не знайдено такого домофона"
	TextFarewell       = "Допобачення"

	TextServiceUnavailable = "Сервіс домофонів тимчасово недоступний, спробуйте пізніше"
	TextMenuExpired        = "Список домофонів застарів. Надішліть /start і поділіться телефоном ще раз"

	openButtonPrefix     = "Відкрити "
	snapshotButtonPrefix = "Фото з "
)

// Intent prefixes are fixed literals matched against the start of the
// message, mirroring the reply-keyboard button labels.
var (
	openIntentRe     = regexp.MustCompile(`^Відкрити\s+`)
	snapshotIntentRe = regexp.MustCompile(`^Фото\s+з\s+`)
	doneRe           = regexp.MustCompile(`^Done$`)
)

func IsOpenCommand(text string) bool     { return openIntentRe.MatchString(text) }
func IsSnapshotCommand(text string) bool { return snapshotIntentRe.MatchString(text) }
