package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "page.title", "Simulador Cypress")

	message.SetString(lang, "login.heading", "Vamos começar!")
	message.SetString(lang, "login.button", "Entrar")
	message.SetString(lang, "captcha.question", "Quanto é %d + %d?")
	message.SetString(lang, "captcha.placeholder", "Sua resposta")
	message.SetString(lang, "captcha.verify", "Verificar")
	// Kept in English like classifier output.
	message.SetString(lang, "captcha.error", "Incorrect answer, please try again.")

	message.SetString(lang, "input.placeholder", "Digite um comando Cypress, ou help")
	message.SetString(lang, "run.button", "Executar")
	message.SetString(lang, "run.busy", "Executando...")
	message.SetString(lang, "run.pending", "Executando... Aguarde.")
	message.SetString(lang, "output.expand", "Expandir")
	message.SetString(lang, "output.collapse", "Recolher")

	message.SetString(lang, "menu.toggle", "Menu")
	message.SetString(lang, "menu.logout", "Sair")

	message.SetString(lang, "consent.message", "Usamos cookies para melhorar sua experiência neste simulador.")
	message.SetString(lang, "consent.accept", "Aceitar")
	message.SetString(lang, "consent.decline", "Recusar")
}
