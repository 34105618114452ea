// Package i18n holds the dashboard's UI strings in English and Indonesian.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the UI languages, preferred first.
var Supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(Supported)

var cat = catalog.NewBuilder(catalog.Fallback(language.English))

// Message keys double as the English text.
const (
	RemainingCredits = "Remaining Credits: %d"
	CreditsUsed      = "Credits used: %d"
	Loading          = "Loading..."
	Generate         = "Generate"
	Generating       = "Generating..."
	Summarize        = "Summarize Text"
	Summarizing      = "Summarizing..."
	CorrectText      = "Correct Text"
	Correcting       = "Correcting..."
	PayNow           = "Pay Now"
	Processing       = "Processing..."
	NoCredits        = "You have no credits left. Choose a plan to continue."
	LoginFailed      = "Invalid email or password."
	RegisterFailed   = "Registration failed. Please try again."
	Registered       = "Account created. Please sign in."
	ChoosePlan       = "Choose Your Plan"
	PaymentFor       = "Payment for %s Plan"
	MemberSince      = "Member since: %s"
	Subscription     = "Subscription: %s"
	TooManyAttempts  = "Too many attempts. Please wait a minute."
)

func init() {
	en := map[string]string{}
	id := map[string]string{
		RemainingCredits: "Sisa Kredit: %d",
		CreditsUsed:      "Kredit terpakai: %d",
		Loading:          "Memuat...",
		Generate:         "Buat",
		Generating:       "Membuat...",
		Summarize:        "Ringkas Teks",
		Summarizing:      "Meringkas...",
		CorrectText:      "Perbaiki Teks",
		Correcting:       "Memperbaiki...",
		PayNow:           "Bayar Sekarang",
		Processing:       "Memproses...",
		NoCredits:        "Kredit Anda habis. Pilih paket untuk melanjutkan.",
		LoginFailed:      "Email atau kata sandi salah.",
		RegisterFailed:   "Pendaftaran gagal. Silakan coba lagi.",
		Registered:       "Akun dibuat. Silakan masuk.",
		ChoosePlan:       "Pilih Paket Anda",
		PaymentFor:       "Pembayaran Paket %s",
		MemberSince:      "Anggota sejak: %s",
		Subscription:     "Langganan: %s",
		TooManyAttempts:  "Terlalu banyak percobaan. Tunggu sebentar.",
	}
	for key := range id {
		en[key] = key
	}
	for key, msg := range en {
		_ = cat.SetString(language.English, key, msg)
	}
	for key, msg := range id {
		_ = cat.SetString(language.Indonesian, key, msg)
	}
}

// Match picks the best supported language for the given preferences
// (X-Locale values, Accept-Language headers, bare tags).
func Match(prefs ...string) language.Tag {
	tag, _ := language.MatchStrings(matcher, prefs...)
	base, _ := tag.Base()
	for _, s := range Supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}
