package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandNewBatch   CommandType = "batch"
	CommandSet        CommandType = "set"
	CommandSale       CommandType = "sale"
	CommandRemoveSale CommandType = "unsale"
	CommandDrop       CommandType = "drop"
	CommandProfit     CommandType = "profit"
	CommandMonth      CommandType = "month"
	CommandPrice      CommandType = "price"
	CommandUnknown    CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandNewBatch):   CommandNewBatch,
	string(CommandSet):        CommandSet,
	string(CommandSale):       CommandSale,
	string(CommandRemoveSale): CommandRemoveSale,
	string(CommandDrop):       CommandDrop,
	string(CommandProfit):     CommandProfit,
	string(CommandMonth):      CommandMonth,
	string(CommandPrice):      CommandPrice,
}

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return cmd
	}

	if t, ok := knownCommands[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

// IsSlashCommand reports whether the text is written in explicit command form.
func IsSlashCommand(message string) bool {
	return strings.HasPrefix(strings.TrimSpace(message), "/")
}
