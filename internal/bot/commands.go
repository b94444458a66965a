package bot

// Telegram bot commands.
const (
	CommandStart     = "/start"
	CommandHelp      = "/help"
	CommandLowPrice  = "/lowprice"
	CommandHighPrice = "/highprice"
	CommandBestDeal  = "/bestdeal"
	CommandHistory   = "/history"
	CommandDelete    = "/delete"
	CommandCancel    = "/cancel"
	CommandLanguage  = "/language"
)
