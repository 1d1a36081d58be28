package bot

// User-facing text. The workspace this bot serves speaks Dutch.
const (
	msgSomethingWentWrong = "Er is iets misgegaan 😿"

	msgGetUser          = "Username van %s: %s"
	msgGetUserFailed    = "Kon de user niet ophalen 😿"
	msgRegistered       = "Account voor %s is toegevoegd! 🎉"
	msgRegisterFailed   = "Kon het account voor %s niet toevoegen. 😿"
	msgGreeting         = "Hey there <@%s>!"
	msgGreetingButton   = "Click Me"
	msgButtonClicked    = "<@%s> clicked the button"
	msgWelcome          = "🎉 Welkom <@%s>! Je account is toegevoegd."
	msgWelcomeFailed    = "Kon het account van <@%s> niet toevoegen. 😿"
	msgSynced           = "✅ Alle leden van dit kanaal zijn gesynchroniseerd met de database."
	msgSyncedPartial    = "⚠️ %d van de %d leden zijn gesynchroniseerd met de database. Niet gelukt: %s"
	msgSyncFailed       = "❌ Er is een fout opgetreden tijdens het synchroniseren. %s"
	msgKudosAnnounce    = "🎉 *Kudos!* 🎉\n<@%s> has received %d kudo(s) from <@%s>\nReason: %s"
	msgKudosRejected    = "Kon de transactie niet uitvoeren: %s 😿"
	msgKudosUnknown     = "Onbekende fout"
	msgKudosFailed      = "Er is een fout opgetreden bij het uitvoeren van de transactie. 😿"
	msgKudosInvalid     = "Ongeldige kudos: %s"
	msgDialogFailed     = "Kon het kudos-formulier niet openen 😿"
	msgLeaderboardTitle = "Leaderboard 🏆 - %s"
	msgLeaderboardLine  = "%s - Kudos: %d"
	msgLeaderboardEmpty = "Er zijn nog geen kudos uitgedeeld."
	msgLeaderboardError = "Kon het leaderboard niet ophalen 😿"
)

// leaderboardTimeLayout renders like "October 14, 2026 at 05:04 PM".
const leaderboardTimeLayout = "January 2, 2006 at 03:04 PM"
