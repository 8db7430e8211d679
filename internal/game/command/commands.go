// Package command defines the terminal client's vocabulary: a line parser
// and a registry of commands with aliases.
package command

// Categories group commands in help output.
const (
	CategoryStory  = "story"
	CategoryCombat = "combat"
	CategoryPlayer = "player"
	CategorySaves  = "saves"
	CategorySystem = "system"
)

// Handler identifiers select the action a command performs.
const (
	HandlerNew       = "new"
	HandlerChoose    = "choose"
	HandlerDo        = "do"
	HandlerAttack    = "attack"
	HandlerDefend    = "defend"
	HandlerRun       = "run"
	HandlerUse       = "use"
	HandlerStatus    = "status"
	HandlerInventory = "inventory"
	HandlerQuests    = "quests"
	HandlerTravel    = "travel"
	HandlerSlots     = "slots"
	HandlerSave      = "save"
	HandlerLoad      = "load"
	HandlerDelete    = "delete"
	HandlerExport    = "export"
	HandlerPush      = "push"
	HandlerPull      = "pull"
	HandlerSaves     = "saves"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command is one player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names.
	Aliases []string
	// Usage shows the argument shape, without the name.
	Usage string
	// Help is the one-line description.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the action.
	Handler string
	// MinArgs is the fewest arguments the command accepts.
	MinArgs int
}

// BuiltinCommands returns every command of the terminal client.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "new", Usage: "<name> <warrior|mage|rogue> <male|female|other> <genre>", Help: "Start a new adventure", Category: CategoryStory, Handler: HandlerNew, MinArgs: 4},
		{Name: "choose", Aliases: []string{"c"}, Usage: "<1-3>", Help: "Pick one of the listed choices", Category: CategoryStory, Handler: HandlerChoose, MinArgs: 1},
		{Name: "do", Aliases: []string{">"}, Usage: "<action>", Help: "Describe your own action", Category: CategoryStory, Handler: HandlerDo, MinArgs: 1},
		{Name: "attack", Aliases: []string{"a", "hit"}, Help: "Strike the enemy", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "defend", Aliases: []string{"block"}, Help: "Brace and recover a little health", Category: CategoryCombat, Handler: HandlerDefend},
		{Name: "run", Aliases: []string{"flee"}, Help: "Try to escape", Category: CategoryCombat, Handler: HandlerRun},
		{Name: "use", Usage: "<item-id>", Help: "Use an item", Category: CategoryPlayer, Handler: HandlerUse, MinArgs: 1},
		{Name: "status", Aliases: []string{"st", "look", "l"}, Help: "Show the character and the scene", Category: CategoryPlayer, Handler: HandlerStatus},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "List carried items", Category: CategoryPlayer, Handler: HandlerInventory},
		{Name: "quests", Aliases: []string{"q"}, Help: "List quests", Category: CategoryPlayer, Handler: HandlerQuests},
		{Name: "travel", Aliases: []string{"go"}, Usage: "<location>", Help: "Travel to a location", Category: CategoryPlayer, Handler: HandlerTravel, MinArgs: 1},
		{Name: "slots", Help: "List local save slots", Category: CategorySaves, Handler: HandlerSlots},
		{Name: "save", Usage: "<slot>", Help: "Save to a local slot", Category: CategorySaves, Handler: HandlerSave, MinArgs: 1},
		{Name: "load", Usage: "<slot>", Help: "Load a local slot", Category: CategorySaves, Handler: HandlerLoad, MinArgs: 1},
		{Name: "delete", Usage: "<slot>", Help: "Delete a local slot", Category: CategorySaves, Handler: HandlerDelete, MinArgs: 1},
		{Name: "export", Usage: "<slot>", Help: "Print a slot as JSON", Category: CategorySaves, Handler: HandlerExport, MinArgs: 1},
		{Name: "push", Help: "Save to the server", Category: CategorySaves, Handler: HandlerPush},
		{Name: "pull", Usage: "<save-id>", Help: "Load a save from the server", Category: CategorySaves, Handler: HandlerPull, MinArgs: 1},
		{Name: "saves", Help: "List your saves on the server", Category: CategorySaves, Handler: HandlerSaves},
		{Name: "help", Aliases: []string{"?"}, Help: "Show this help", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
