package moderation

// Built-in language word lists. These ship with the engine and are never
// re-fetched from the store; only custom words are loaded per scope.
var builtinWords = []BadWordEntry{
	// English
	{Word: "idiot", Category: "en", Severity: SeverityLow},
	{Word: "stupid", Category: "en", Severity: SeverityLow},
	{Word: "moron", Category: "en", Severity: SeverityLow},
	{Word: "loser", Category: "en", Severity: SeverityLow},
	{Word: "dumbass", Category: "en", Severity: SeverityLow},
	{Word: "jerk", Category: "en", Severity: SeverityLow},
	{Word: "shit", Category: "en", Severity: SeverityMedium},
	{Word: "bitch", Category: "en", Severity: SeverityMedium},
	{Word: "asshole", Category: "en", Severity: SeverityMedium},
	{Word: "bastard", Category: "en", Severity: SeverityMedium},
	{Word: "dickhead", Category: "en", Severity: SeverityMedium},
	{Word: "piss off", Category: "en", Severity: SeverityMedium},
	{Word: "whore", Category: "en", Severity: SeverityHigh},
	{Word: "slut", Category: "en", Severity: SeverityHigh},
	{Word: "cunt", Category: "en", Severity: SeverityHigh},
	{Word: "fuck", Category: "en", Severity: SeverityHigh},

	// Russian
	{Word: "дурак", Category: "ru", Severity: SeverityLow},
	{Word: "дебил", Category: "ru", Severity: SeverityLow},
	{Word: "урод", Category: "ru", Severity: SeverityLow},
	{Word: "идиот", Category: "ru", Severity: SeverityLow},
	{Word: "мудак", Category: "ru", Severity: SeverityMedium},
	{Word: "гандон", Category: "ru", Severity: SeverityMedium},
	{Word: "тварь", Category: "ru", Severity: SeverityMedium},
	{Word: "сука", Category: "ru", Severity: SeverityHigh},
	{Word: "блять", Category: "ru", Severity: SeverityHigh},
	{Word: "пидор", Category: "ru", Severity: SeverityHigh},
	{Word: "хуй", Category: "ru", Severity: SeverityHigh},
	{Word: "пизда", Category: "ru", Severity: SeverityHigh},
}
