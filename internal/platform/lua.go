package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// LuaGlobal is the name of the table InjectPlatformTable defines.
const LuaGlobal = "platform"

// InjectPlatformTable defines a read-only global table describing info so
// configuration code can pick per-host launcher locations:
//
//	defaults = { platform.when(platform.is_windows, "d:\\php\\php.exe") }
//
// Call it before running any user code.
func InjectPlatformTable(L *lua.LState, info *Info) error {
	fields := L.NewTable()

	optional := func(s string) lua.LValue {
		if s == "" {
			return lua.LNil
		}
		return lua.LString(s)
	}

	for key, value := range map[string]lua.LValue{
		"name":       lua.LString(info.Name),
		"os":         lua.LString(info.OS),
		"arch":       lua.LString(info.Arch),
		"family":     lua.LString(info.Family().String()),
		"product":    optional(info.Platform),
		"version":    optional(info.Version),
		"is_windows": lua.LBool(info.IsWindows()),
		"is_linux":   lua.LBool(info.IsLinux()),
		"is_macos":   lua.LBool(info.IsMacOS()),
	} {
		fields.RawSetString(key, value)
	}

	// when(cond, value) yields value if cond holds, nil otherwise. nil entries
	// in a list are skipped by the config reader.
	fields.RawSetString("when", L.NewFunction(func(L *lua.LState) int {
		if L.CheckBool(1) {
			L.Push(L.Get(2))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal(LuaGlobal, readOnlyView(L, fields))
	return nil
}

// readOnlyView returns an empty proxy whose metatable forwards reads to
// fields and rejects writes. The metatable itself is hidden.
func readOnlyView(L *lua.LState, fields *lua.LTable) *lua.LTable {
	meta := L.NewTable()
	meta.RawSetString("__index", fields)
	meta.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s table is read-only", LuaGlobal)
		return 0
	}))
	meta.RawSetString("__metatable", lua.LString("locked"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, meta)
	return proxy
}
