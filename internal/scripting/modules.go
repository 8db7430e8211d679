package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
)

// RegisterModules registers the engine.log and engine.dice tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (e *Effects) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": e.logger.Debug,
		"info":  e.logger.Info,
		"warn":  e.logger.Warn,
		"error": e.logger.Error,
	} {
		fn := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua", zap.String("msg", L.CheckString(1)))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(e.luaRoll))
	L.SetField(engine, "dice", diceTbl)

	L.SetGlobal("engine", engine)
}

// luaRoll implements engine.dice.roll(expr) -> {total=, dice={...}, modifier=}.
func (e *Effects) luaRoll(L *lua.LState) int {
	expr, err := dice.Parse(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	res := e.roller.Roll(expr)

	tbl := L.NewTable()
	L.SetField(tbl, "total", lua.LNumber(res.Total()))
	L.SetField(tbl, "modifier", lua.LNumber(res.Modifier))
	dieTbl := L.NewTable()
	for _, d := range res.Dice {
		dieTbl.Append(lua.LNumber(d))
	}
	L.SetField(tbl, "dice", dieTbl)
	L.Push(tbl)
	return 1
}
