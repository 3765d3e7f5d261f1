package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.AmericanEnglish

	message.SetString(lang, "page.title", "Cypress Simulator")

	// Login and captcha
	message.SetString(lang, "login.heading", "Let's get started!")
	message.SetString(lang, "login.button", "Login")
	message.SetString(lang, "captcha.question", "What is %d + %d?")
	message.SetString(lang, "captcha.placeholder", "Your answer")
	message.SetString(lang, "captcha.verify", "Verify")
	message.SetString(lang, "captcha.error", "Incorrect answer, please try again.")

	// Simulator
	message.SetString(lang, "input.placeholder", "Type a Cypress command, or help")
	message.SetString(lang, "run.button", "Run")
	message.SetString(lang, "run.busy", "Running...")
	message.SetString(lang, "run.pending", "Running... Please wait.")
	message.SetString(lang, "output.expand", "Expand")
	message.SetString(lang, "output.collapse", "Collapse")

	// Menu
	message.SetString(lang, "menu.toggle", "Menu")
	message.SetString(lang, "menu.logout", "Logout")

	// Cookie consent
	message.SetString(lang, "consent.message", "We use cookies to improve your experience on this simulator.")
	message.SetString(lang, "consent.accept", "Accept")
	message.SetString(lang, "consent.decline", "Decline")
}
